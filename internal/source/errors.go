package source

import "errors"

// errTruncated signals a SqlParams body that ended before the fields it
// claims to carry were fully present.
var errTruncated = errors.New("source: truncated sql-params body")
