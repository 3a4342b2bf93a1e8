package common

import "time"

// AccessTokenHeaderName is the gRPC/HTTP metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// ShareTokenHeaderName carries the share-link token for anonymous viewers.
const ShareTokenHeaderName = "share_token"

const (
	// PresenceWindow is how long a collaborator stays active after its last heartbeat.
	PresenceWindow = 5 * time.Minute
	// HeartbeatInterval is the default period of the viewer heartbeat loop.
	HeartbeatInterval = 30 * time.Second
)

// ShareTokenLength is the number of alphanumeric characters in a share token.
const ShareTokenLength = 12

// InitialVersionSummary is the change summary recorded for version 1.
const InitialVersionSummary = "Initial version"

// Permission levels granted by a share link.
const (
	PermissionView = "view"
	PermissionEdit = "edit"
)

// ValidPermission reports whether p is a known permission level.
func ValidPermission(p string) bool {
	return p == PermissionView || p == PermissionEdit
}
