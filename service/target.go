package service

// Target identifies who a bulk divestment applies to: a single member or
// every member in the guild.
type Target struct {
	all      bool
	memberID int64
}

// TargetMember targets a single member by Discord ID
func TargetMember(discordID int64) Target {
	return Target{memberID: discordID}
}

// TargetAll targets every member in the guild
func TargetAll() Target {
	return Target{all: true}
}

// All reports whether the target is the whole guild
func (t Target) All() bool {
	return t.all
}

// MemberID returns the targeted member's Discord ID; zero for TargetAll
func (t Target) MemberID() int64 {
	return t.memberID
}
