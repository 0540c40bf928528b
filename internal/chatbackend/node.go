package chatbackend

import (
	"github.com/NERVsystems/n9p/internal/ninep"
)

// kind identifies which virtual file (or directory) a Node names. The
// tree is fixed at compile time: one root directory with a flat set of
// files plus a stream/ subdirectory.
type kind int

const (
	kindRoot kind = iota
	kindStreamDir
	kindAsk
	kindModel
	kindTemperature
	kindTokens
	kindNew
	kindContext
	kindUsage
	kindCompact
	kindPrefill
	kindThinking
	kindExample
	kindStreamAsk
	kindStreamChunk
)

// Node is the per-fid auxiliary state: which virtual file the fid
// currently names. Unlike hostfs, the content behind a kind lives in
// the shared Backend, not in the Node, since every fid looks at the
// same single conversation.
type Node struct {
	kind kind
}

func isDir(k kind) bool {
	return k == kindRoot || k == kindStreamDir
}

// names holds the file name a directory listing reports for each kind.
var names = map[kind]string{
	kindRoot:        "llm",
	kindStreamDir:   "stream",
	kindAsk:         "ask",
	kindModel:       "model",
	kindTemperature: "temperature",
	kindTokens:      "tokens",
	kindNew:         "new",
	kindContext:     "context",
	kindUsage:       "usage",
	kindCompact:     "compact",
	kindPrefill:     "prefill",
	kindThinking:    "thinking",
	kindExample:     "_example",
	kindStreamAsk:   "ask",
	kindStreamChunk: "chunk",
}

// rootChildren maps a name walked from the root directory to the kind
// it resolves to.
var rootChildren = map[string]kind{
	"ask":         kindAsk,
	"model":       kindModel,
	"temperature": kindTemperature,
	"tokens":      kindTokens,
	"new":         kindNew,
	"context":     kindContext,
	"usage":       kindUsage,
	"compact":     kindCompact,
	"prefill":     kindPrefill,
	"thinking":    kindThinking,
	"_example":    kindExample,
	"stream":      kindStreamDir,
}

// rootOrder fixes Rreaddir listing order for the root directory.
var rootOrder = []kind{
	kindAsk, kindModel, kindTemperature, kindTokens, kindNew, kindContext,
	kindUsage, kindCompact, kindPrefill, kindThinking, kindExample, kindStreamDir,
}

// streamChildren maps a name walked from stream/ to the kind it
// resolves to.
var streamChildren = map[string]kind{
	"chunk": kindStreamChunk,
	"ask":   kindStreamAsk,
}

var streamOrder = []kind{kindStreamChunk, kindStreamAsk}

// qidPath assigns each kind a stable, unique Qid.Path. Paths start at 1
// (kindRoot), so a zero Qid.Path never names a real file.
var qidPath = map[kind]uint64{
	kindRoot:        1,
	kindStreamDir:   2,
	kindAsk:         3,
	kindModel:       4,
	kindTemperature: 5,
	kindTokens:      6,
	kindNew:         7,
	kindContext:     8,
	kindUsage:       9,
	kindCompact:     10,
	kindPrefill:     11,
	kindThinking:    12,
	kindExample:     13,
	kindStreamAsk:   14,
	kindStreamChunk: 15,
}

func qidFor(k kind) ninep.Qid {
	t := uint8(ninep.QTFILE)
	if isDir(k) {
		t = ninep.QTDIR
	}
	return ninep.Qid{Type: t, Version: 0, Path: qidPath[k]}
}

func modeFor(k kind) uint32 {
	switch k {
	case kindRoot, kindStreamDir:
		return 0o040555
	case kindModel, kindTemperature, kindNew, kindContext, kindCompact, kindPrefill, kindThinking, kindAsk:
		return 0o100666
	case kindStreamAsk:
		return 0o100222
	default:
		return 0o100444
	}
}
