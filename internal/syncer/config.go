package syncer

type Config struct {
	// Program and Args form the command prefix, e.g. "git" + ["ftp"].
	Program string
	Args    []string
	// WorkDir is where the tool runs; it must be inside the repository.
	WorkDir string
}

func DefaultConfig() Config {
	return Config{
		Program: "git",
		Args:    []string{"ftp"},
		WorkDir: ".",
	}
}
