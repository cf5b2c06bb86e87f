// Package google provides OAuth2 authentication for the Google Calendar API.
//
// consultcal acts on a single calendar owner's behalf using a long-lived
// refresh token. AuthURL and Exchange support obtaining that token once;
// RefreshTokenProvider turns it into short-lived access tokens at runtime.
package google
