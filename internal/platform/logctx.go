package platform

import (
	"context"
	"time"
)

// LogBestEffortCtx sends one audit log if a client is attached to ctx. The
// send runs on its own short deadline and failures are swallowed: audit
// logging never blocks or fails the operation it describes.
func LogBestEffortCtx(ctx context.Context, req CreateLogRequest) {
	p := ClientFromContext(ctx)
	if p == nil {
		return
	}
	ctx2, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = p.CreateLog(ctx2, req)
}
