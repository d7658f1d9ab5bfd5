package types

// Jobs is the fixed set of in-game job tags a profile can carry, in the
// order they are presented to the user.
var Jobs = []string{
	"Vagrant",
	"Acrobat",
	"Jester",
	"Ranger",
	"Harlequin",
	"Crackshooter",
	"Assist",
	"Ringmaster",
	"Billposter",
	"Seraph",
	"Force Master",
	"Magician",
	"Psykeeper",
	"Elementor",
	"Mentalist",
	"Arcanist",
	"Mercenary",
	"Blade",
	"Knight",
	"Slayer",
	"Templar",
}

// DefaultJob is assigned when a profile has no valid job tag.
const DefaultJob = "Vagrant"

var jobSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(Jobs))
	for _, j := range Jobs {
		s[j] = struct{}{}
	}
	return s
}()

// ValidJob reports whether job is one of the known job tags.
func ValidJob(job string) bool {
	_, ok := jobSet[job]
	return ok
}

// NormalizeJob returns job if valid, otherwise DefaultJob.
func NormalizeJob(job string) string {
	if ValidJob(job) {
		return job
	}
	return DefaultJob
}
