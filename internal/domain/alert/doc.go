// Package alert contains the core domain types of the find-me tag.
//
// It defines Severity (the one-byte Alert Level value exchanged between peers),
// Role (target, locating or cancelling) and RoleState, the button-driven state
// machine that decides which role the device plays.
package alert
