package guard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrymomot/inputguard/pkg/cache"
	"github.com/dmitrymomot/inputguard/pkg/logger"
	"github.com/dmitrymomot/inputguard/pkg/pattern"
)

// memoVersion is bumped whenever the encoding of a cached result changes.
const memoVersion = "guard/v1"

type memoEntry struct {
	Output    json.RawMessage `json:"output,omitempty"`
	Rejection *Rejection      `json:"rejection,omitempty"`
}

func memoKey(req Request, limits Limits) cache.Key {
	return cache.NewKey(
		[]byte(memoVersion),
		[]byte(req.Kind),
		[]byte(req.Format),
		[]byte(req.Operation),
		[]byte(req.Flags.String()),
		[]byte(req.Pattern),
		[]byte(req.Replacement),
		[]byte(req.Filename),
		req.Payload,
		limits.fingerprint(),
	)
}

// recall treats store failures and unreadable entries as misses.
func (g *Guard) recall(ctx context.Context, key cache.Key, kind Kind) (Result, bool) {
	data, ok, err := g.store.Get(ctx, key)
	if err != nil {
		g.log.WarnContext(ctx, "memo lookup failed", logger.Kind(string(kind)), logger.Error(err))
		return Result{}, false
	}
	if !ok {
		return Result{}, false
	}

	res, err := decodeResult(kind, data)
	if err != nil {
		g.log.WarnContext(ctx, "memo entry unreadable", logger.Kind(string(kind)), logger.Error(err))
		return Result{}, false
	}
	return res, true
}

func (g *Guard) remember(ctx context.Context, key cache.Key, res Result) {
	data, err := encodeResult(res)
	if err != nil {
		// Values JSON cannot represent, such as a YAML .nan, are just not cached.
		g.log.DebugContext(ctx, "memo entry not encodable", logger.Kind(string(res.Kind)), logger.Error(err))
		return
	}
	if err := g.store.Set(ctx, key, data); err != nil {
		g.log.WarnContext(ctx, "memo store failed", logger.Kind(string(res.Kind)), logger.Error(err))
	}
}

func encodeResult(res Result) ([]byte, error) {
	entry := memoEntry{Rejection: res.Rejection}
	if res.Rejection == nil {
		raw, err := json.Marshal(res.Output)
		if err != nil {
			return nil, err
		}
		entry.Output = raw
	}
	return json.Marshal(entry)
}

func decodeResult(kind Kind, data []byte) (Result, error) {
	var entry memoEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Result{}, err
	}
	if entry.Rejection != nil {
		return reject(kind, entry.Rejection), nil
	}
	if len(entry.Output) == 0 {
		return Result{}, fmt.Errorf("memo entry for %s has neither output nor rejection", kind)
	}

	switch kind {
	case PatternTest:
		var out pattern.Outcome
		if err := json.Unmarshal(entry.Output, &out); err != nil {
			return Result{}, err
		}
		return accept(kind, out), nil

	case MarkupRender:
		var out string
		if err := json.Unmarshal(entry.Output, &out); err != nil {
			return Result{}, err
		}
		return accept(kind, out), nil

	case StructuredParse:
		// Numbers come back as json.Number, as the JSON parser produces them.
		dec := json.NewDecoder(bytes.NewReader(entry.Output))
		dec.UseNumber()
		var out any
		if err := dec.Decode(&out); err != nil {
			return Result{}, err
		}
		return accept(kind, out), nil
	}
	return Result{}, fmt.Errorf("kind %q is not memoized", kind)
}
