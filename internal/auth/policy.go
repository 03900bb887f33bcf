package auth

import "github.com/rahulvm-dev/messagely/internal/models"

// CanViewMessage reports whether p may read m. Either role is
// sufficient: the sender and the recipient can both view, anyone else
// is denied.
func CanViewMessage(p Principal, m models.Message) bool {
	return p.Username == m.FromUsername || p.Username == m.ToUsername
}

// CanMarkRead reports whether p may mark m read. Only the recipient
// qualifies; the sender never marks their own sent message as read.
func CanMarkRead(p Principal, m models.Message) bool {
	return p.Username == m.ToUsername
}
