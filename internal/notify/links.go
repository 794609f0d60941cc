package notify

const githubURL = "https://github.com"

// Link formats a chat hyperlink.
func Link(url, desc string) string {
	return "<" + url + "|" + desc + ">"
}

func RepoURL(owner, repo string) string {
	return githubURL + "/" + owner + "/" + repo
}

// RepoLink links owner/repo, or returns the bare repo name when the owner is
// unknown.
func RepoLink(owner, repo string) string {
	if owner == "" {
		return repo
	}

	return Link(RepoURL(owner, repo), owner+"/"+repo)
}

func BranchLink(owner, repo, branch string) string {
	return Link(RepoURL(owner, repo)+"/tree/"+branch, "branch "+branch)
}

func CommitLink(owner, repo, revision string) string {
	short := revision
	if len(short) > 7 {
		short = short[:7]
	}

	return Link(RepoURL(owner, repo)+"/commit/"+revision, short)
}

func DeployLink(owner, repo, runID, runNumber string) string {
	return Link(RepoURL(owner, repo)+"/actions/runs/"+runID, "Deployment #"+runNumber)
}
