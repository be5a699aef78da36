// Package delivery moves backup payloads between the process and where they
// are kept: a local directory, an S3 bucket, an HTTP endpoint or a git
// repository that records every backup as a commit.
package delivery
