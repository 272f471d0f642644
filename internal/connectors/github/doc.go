// Package github fetches a single contract file from a GitHub repository.
//
// URIs take the form github://{owner}/{repo}/{path}[@{ref}], where ref is a
// branch, tag or commit SHA and defaults to the repository's default branch.
//
// # Authentication
//
// A personal access token is read from the environment on each fetch. When
// none is set the request is made anonymously, which works for public
// repositories within GitHub's unauthenticated quota of 60 requests per
// hour.
//
// # Rate Limiting
//
// Requests are paced by a token bucket at about 1.2 per second. The
// X-RateLimit-* headers of each response are tracked, and once the quota is
// nearly spent further fetches fail with a RateLimitError until the reset
// time instead of blocking.
//
// # Errors
//
// Errors unwrap to domain sentinels: 404 to [domain.ErrNotFound], 401 and
// 403 to [domain.ErrSourceAuthRequired], and rate limits to
// [domain.ErrRateLimited].
package github
