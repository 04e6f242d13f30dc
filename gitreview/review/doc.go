// Package review holds the canonical model shared by every
// hosting platform: requests, comments, commits and users.
//
// Provider is the capability set each platform implements
// in a sub-package of gitreview/git. Normalization from a
// platform's wire format into the types of this package
// lives next to each implementation; nothing here knows
// about a specific platform.
//
// MatchURL and MatchInsteadOf are the shared URL matching
// helpers, parameterized by the platform host.
package review
