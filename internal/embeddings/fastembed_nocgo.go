//go:build !cgo

package embeddings

import "errors"

var errNoCGO = errors.New("fastembed: binary built without cgo, set embeddings.provider to tei")

func newLocalProvider(FastEmbedConfig) (Provider, error) {
	return nil, errNoCGO
}
