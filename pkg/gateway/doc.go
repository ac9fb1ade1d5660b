// Package gateway adapts delivery channels behind a single Send interface.
//
// Each gateway owns one channel: PushGateway and SMSGateway post JSON to
// their provider's HTTP API, EmailGateway uses Postmark's transactional
// API, and DevGateway logs sends for credential-free development.
//
// Errors distinguish permanent failures from transient ones. A failure
// wrapping ErrPermanent, such as a missing contact address or a provider
// rejection, must not be retried; check with IsPermanent. Everything else
// is fair game for the retry scheduler.
package gateway
