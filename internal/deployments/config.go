package deployments

type Config struct {
	SyncRoot    string
	GitDir      string
	MarkerFile  string
	CleanRemote bool

	Host     string
	Root     string
	User     string
	Password string
	Scheme   string

	// GitHub run context used for notice links; all optional.
	Owner     string
	Repo      string
	Branch    string
	RunID     string
	RunNumber string
}

// Target names the remote location for the journal and notices.
func (c Config) Target() string {
	return c.Host + "/" + c.Root
}
