package bridge

import _ "embed"

// Page is the browser side of the bridge. It polls /ceremony/pending, runs the
// ceremony and posts the credential to /ceremony/resolve or the error to
// /ceremony/reject.
//
//go:embed page.html
var Page []byte
