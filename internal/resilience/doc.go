// Package resilience provides reliability patterns for the application.
// It includes retry logic with exponential backoff and jitter for the
// initial listing navigation.
//
// Usage Example:
//
//	retryConfig := retry.NavigationConfig()
//	err := retry.WithBackoff(ctx, retryConfig, func() error {
//	    return navigateToListing()
//	})
package resilience
