package googleEmbedding

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// isRateLimited reports whether the provider rejected the call for quota
// reasons; those are worth a single retry, everything else is not.
func isRateLimited(err error) bool {
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted
	}
	return false
}
