package chatbackend

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/NERVsystems/n9p/internal/ninep"
)

// compactThreshold is the fraction of the context limit at which ask
// auto-compacts before making the next API call.
const compactThreshold = 0.80

// Backend exposes a single chat session as a 9P2000.L filesystem. One
// Backend instance is shared across every connection; the conversation
// it wraps has no per-connection isolation, since every fid reads and
// writes the same underlying session.
type Backend struct {
	ninep.UnimplementedBackend[*Node]

	client LLMBackend
	logger logrus.FieldLogger

	mu          sync.RWMutex
	lastAsk     string
	lastCompact string
}

// NewBackend wraps client in a 9P2000.L filesystem.
func NewBackend(client LLMBackend, logger logrus.FieldLogger) *Backend {
	if logger == nil {
		logger = logrus.New()
	}
	return &Backend{client: client, logger: logger, lastCompact: "ready\n"}
}

func (b *Backend) NewAux() *Node { return &Node{kind: kindRoot} }

func (b *Backend) Rattach(ctx context.Context, fid, afid *ninep.Fid[*Node], uname, aname string, nuname uint32) (ninep.RattachMsg, error) {
	fid.Aux.kind = kindRoot
	return ninep.RattachMsg{Qid: qidFor(kindRoot)}, nil
}

func (b *Backend) Rwalk(ctx context.Context, fid, newfid *ninep.Fid[*Node], wnames []string) (ninep.RwalkMsg, error) {
	k := fid.Aux.kind
	var wqids []ninep.Qid
	for i, name := range wnames {
		var children map[string]kind
		switch k {
		case kindRoot:
			children = rootChildren
		case kindStreamDir:
			children = streamChildren
		default:
			if i == 0 {
				return ninep.RwalkMsg{}, ninep.NewError(uint32(unix.ENOTDIR))
			}
			break
		}
		next, ok := children[name]
		if !ok {
			if i == 0 {
				return ninep.RwalkMsg{}, ninep.NewError(uint32(unix.ENOENT))
			}
			break
		}
		k = next
		wqids = append(wqids, qidFor(k))
	}
	newfid.Aux.kind = k
	return ninep.RwalkMsg{Wqids: wqids}, nil
}

func (b *Backend) Rgetattr(ctx context.Context, fid *ninep.Fid[*Node], reqMask uint64) (ninep.RgetattrMsg, error) {
	k := fid.Aux.kind
	content, _ := b.contentFor(k)
	return ninep.RgetattrMsg{
		Valid: reqMask,
		Qid:   qidFor(k),
		Stat: ninep.Stat{
			Mode:  modeFor(k),
			NLink: 1,
			Size:  uint64(len(content)),
		},
	}, nil
}

func (b *Backend) Rlopen(ctx context.Context, fid *ninep.Fid[*Node], flags uint32) (ninep.RlopenMsg, error) {
	return ninep.RlopenMsg{Qid: qidFor(fid.Aux.kind)}, nil
}

func (b *Backend) Rreaddir(ctx context.Context, fid *ninep.Fid[*Node], offset uint64, count uint32) (ninep.RreaddirMsg, error) {
	var order []kind
	switch fid.Aux.kind {
	case kindRoot:
		order = rootOrder
	case kindStreamDir:
		order = streamOrder
	default:
		return ninep.RreaddirMsg{}, ninep.NewError(uint32(unix.ENOTDIR))
	}

	if offset >= uint64(len(order)) {
		return ninep.RreaddirMsg{}, nil
	}

	var entries []ninep.DirEntry
	budget := int(count)
	const perEntryOverhead = 64
	for i := offset; i < uint64(len(order)); i++ {
		if budget < perEntryOverhead {
			break
		}
		k := order[i]
		entries = append(entries, ninep.DirEntry{
			Qid:    qidFor(k),
			Offset: i + 1,
			Type:   qidFor(k).Type,
			Name:   names[k],
		})
		budget -= perEntryOverhead
	}
	return ninep.RreaddirMsg{Entries: entries}, nil
}

func (b *Backend) Rread(ctx context.Context, fid *ninep.Fid[*Node], offset uint64, count uint32) (ninep.RreadMsg, error) {
	content, err := b.contentFor(fid.Aux.kind)
	if err != nil {
		return ninep.RreadMsg{}, err
	}
	if offset >= uint64(len(content)) {
		return ninep.RreadMsg{Data: nil}, nil
	}
	end := offset + uint64(count)
	if end > uint64(len(content)) {
		end = uint64(len(content))
	}
	return ninep.RreadMsg{Data: []byte(content[offset:end])}, nil
}

func (b *Backend) Rwrite(ctx context.Context, fid *ninep.Fid[*Node], offset uint64, data []byte) (ninep.RwriteMsg, error) {
	n, err := b.write(ctx, fid.Aux.kind, data)
	if err != nil {
		return ninep.RwriteMsg{}, err
	}
	return ninep.RwriteMsg{Count: uint32(n)}, nil
}

func (b *Backend) Rclunk(ctx context.Context, fid *ninep.Fid[*Node]) (ninep.RclunkMsg, error) {
	return ninep.RclunkMsg{}, nil
}

// contentFor generates the current read content for a virtual file:
// ask ("%s\n" response), model, temperature ("%.2f\n"), tokens
// ("%d\n"), context (JSON array via state.go), usage ("%d/%d\n"),
// compact status, prefill, thinking, _example's static text, and the
// streaming chunk file (blocks on the client's stream channel).
func (b *Backend) contentFor(k kind) (string, error) {
	switch k {
	case kindRoot, kindStreamDir:
		return "", nil
	case kindAsk:
		b.mu.RLock()
		content := b.lastAsk
		b.mu.RUnlock()
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return content, nil
	case kindModel:
		return b.client.Model() + "\n", nil
	case kindTemperature:
		return fmt.Sprintf("%.2f\n", b.client.Temperature()), nil
	case kindTokens:
		return fmt.Sprintf("%d\n", b.client.LastTokens()), nil
	case kindNew:
		return "", nil
	case kindContext:
		doc, err := b.client.MessagesJSON()
		if err != nil {
			return "", err
		}
		return string(doc) + "\n", nil
	case kindUsage:
		return fmt.Sprintf("%d/%d\n", b.client.TotalTokens(), b.client.ContextLimit()), nil
	case kindCompact:
		b.mu.RLock()
		defer b.mu.RUnlock()
		return b.lastCompact, nil
	case kindPrefill:
		content := b.client.Prefill()
		if content != "" {
			content += "\n"
		}
		return content, nil
	case kindThinking:
		tokens := b.client.ThinkingTokens()
		switch {
		case tokens < 0:
			return "max\n", nil
		case tokens == 0:
			return "off\n", nil
		default:
			return fmt.Sprintf("%d\n", tokens), nil
		}
	case kindExample:
		return exampleContent, nil
	case kindStreamAsk:
		return "", nil
	case kindStreamChunk:
		if !b.client.IsStreaming() {
			return "", io.EOF
		}
		chunk, ok := b.client.ReadStreamChunk()
		if !ok {
			return "", io.EOF
		}
		return chunk, nil
	default:
		return "", ninep.NewError(uint32(unix.EOPNOTSUPP))
	}
}

// write applies a write to a virtual file, returning the byte count
// the 9P client should see: always len(data) on success, including
// for ask/compact when the underlying call itself errors, so the
// client sees the write land and reads the error back from the file.
func (b *Backend) write(ctx context.Context, k kind, data []byte) (int, error) {
	switch k {
	case kindAsk:
		prompt := strings.TrimSpace(string(data))
		if prompt == "" {
			return len(data), nil
		}
		if tokens, limit := b.client.TotalTokens(), b.client.ContextLimit(); limit > 0 && tokens > int(float64(limit)*compactThreshold) {
			if err := b.client.Compact(ctx); err != nil {
				b.logger.WithError(err).Warn("auto-compact failed, continuing anyway")
			}
		}
		response, err := b.client.Ask(ctx, prompt)
		b.mu.Lock()
		if err != nil {
			b.lastAsk = "Error: " + err.Error()
		} else {
			b.lastAsk = response
		}
		b.mu.Unlock()
		return len(data), nil
	case kindModel:
		model := strings.TrimSpace(string(data))
		if model == "" {
			return 0, fmt.Errorf("model name cannot be empty")
		}
		b.client.SetModel(model)
		return len(data), nil
	case kindTemperature:
		temp, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid temperature: %w", err)
		}
		if err := b.client.SetTemperature(temp); err != nil {
			return 0, err
		}
		return len(data), nil
	case kindNew:
		b.client.Reset()
		return len(data), nil
	case kindContext:
		msg := strings.TrimSpace(contextWrite(data))
		if msg != "" {
			b.client.AddSystemMessage(msg)
		}
		return len(data), nil
	case kindCompact:
		if strings.TrimSpace(string(data)) == "" {
			return len(data), nil
		}
		err := b.client.Compact(ctx)
		b.mu.Lock()
		if err != nil {
			b.lastCompact = fmt.Sprintf("error: %v\n", err)
		} else {
			b.lastCompact = fmt.Sprintf("ok: %d/%d\n", b.client.TotalTokens(), b.client.ContextLimit())
		}
		b.mu.Unlock()
		return len(data), nil
	case kindPrefill:
		b.client.SetPrefill(strings.TrimSpace(string(data)))
		return len(data), nil
	case kindThinking:
		return len(data), b.setThinking(strings.TrimSpace(string(data)))
	case kindStreamAsk:
		prompt := strings.TrimSpace(string(data))
		if prompt == "" {
			return len(data), nil
		}
		if err := b.client.StartStream(ctx, prompt); err != nil {
			return 0, err
		}
		return len(data), nil
	case kindTokens, kindUsage, kindExample, kindStreamChunk:
		return 0, ninep.NewError(uint32(unix.EACCES))
	default:
		return 0, ninep.NewError(uint32(unix.EOPNOTSUPP))
	}
}

func (b *Backend) setThinking(input string) error {
	input = strings.ToLower(input)
	var tokens int
	switch input {
	case "max", "on", "true", "enabled", "-1":
		tokens = -1
	case "off", "false", "disabled", "0":
		tokens = 0
	default:
		n, err := strconv.Atoi(input)
		if err != nil {
			return fmt.Errorf("invalid thinking value: use 'max', 'off', or a number")
		}
		if n < 0 {
			n = -1
		}
		tokens = n
	}
	b.client.SetThinkingTokens(tokens)
	return nil
}

var _ ninep.Backend[*Node] = (*Backend)(nil)
