// Package messages holds the user-facing text the bot sends.
package messages

const (
	Intro = "Hi! I organize tee-off groups for this chat. " +
		"Every day I post a signup, and once it closes I draw the groups. " +
		"Set your handicap with /handicap and your division with /division."

	DailyInvite = "Tee time today! Who's playing?"
	JoinButton  = "I'm in ⛳"

	JoinedAck    = "You're on the tee sheet."
	AlreadyIn    = "You're already signed up."
	SignupClosed = "Signups are closed for today."

	NoPlayers     = "Nobody signed up today, so no groups to draw."
	NoOpenSession = "There is no open signup right now."

	HandicapUsage   = "Usage: /handicap 12.4 (or /handicap none to clear)"
	HandicapCleared = "Couldn't read that as a number, handicap cleared."
	HandicapSet     = "Handicap saved."
	DivisionUsage   = "Usage: /division A, /division B or /division none"
	DivisionSet     = "Division saved."
	ModeUsage       = "Usage: /mode random, /mode handicap or /mode division"
	ModeSet         = "Split mode saved."
	SizeUsage       = "Usage: /groupsize N (at least 1)"
	SizeSet         = "Group size saved."
	TimeUsage       = "Usage: /time HH:MM (UTC)"
	TimeSet         = "Daily signup time saved."
	EmptyRoster     = "No player profiles yet. Use /handicap or /division to add yours."
)
