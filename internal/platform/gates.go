// internal/platform/gates.go

package platform

import "context"

// OpenGate grants every capability. The subscription service owns real
// entitlements; until its checks are wired in, all accounts can like,
// browse and message.
type OpenGate struct{}

func NewOpenGate() *OpenGate { return &OpenGate{} }

func (OpenGate) CanLike(ctx context.Context, userID int64) bool            { return true }
func (OpenGate) CanViewSuggestions(ctx context.Context, userID int64) bool { return true }
func (OpenGate) CanMessage(ctx context.Context, userID int64) bool         { return true }
