package utils

import "time"

// LocationKeyPrefix namespaces the live location keys in Redis.
const LocationKeyPrefix = "ps:"

// QuoteSampleRetention bounds how long proximity samples are kept for analytics.
const QuoteSampleRetention = 30 * 24 * time.Hour
