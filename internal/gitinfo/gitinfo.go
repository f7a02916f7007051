// Package gitinfo resolves the checked-out revision of a project so a match
// report can be tied to the build it measured. Lookups are best-effort; a
// project outside version control is not an error.
package gitinfo

import (
	"fmt"

	git "github.com/go-git/go-git/v5"
)

// Describe returns "branch@shorthash" for the repository containing dir, or
// "" when dir is not inside a repository or HEAD cannot be resolved.
func Describe(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}

	hash := head.Hash().String()
	if len(hash) > 12 {
		hash = hash[:12]
	}

	if head.Name().IsBranch() {
		return fmt.Sprintf("%s@%s", head.Name().Short(), hash)
	}
	return hash
}
