package urlstate

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"

	"github.com/klauspost/compress/flate"
	"github.com/valyala/fastjson"

	"github.com/yildizm/runlens/internal/logger"
)

// QueryParam is the URL query parameter carrying the encoded state
const QueryParam = "q"

// maxPayload bounds the inflated size of a payload
const maxPayload = 1 << 20

// ErrCorrupt is returned when an encoded state cannot be decoded
var ErrCorrupt = errors.New("corrupt query state")

var encoding = base64.RawURLEncoding

// Encode minifies params, serialises them as a JSON object and compresses the
// result into a URL-safe string. An empty parameter set encodes to "".
func Encode(params map[string]string) (string, error) {
	if len(params) == 0 {
		return "", nil
	}
	payload := marshalObject(Minify(params))

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("failed to create compressor: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return "", fmt.Errorf("failed to compress state: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to flush compressed state: %w", err)
	}
	return encoding.EncodeToString(buf.Bytes()), nil
}

// EncodeState encodes a QueryState
func EncodeState(s QueryState) (string, error) {
	return Encode(s.Params())
}

// DecodeParams is the inverse of Encode. The empty string decodes to nil.
func DecodeParams(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}

	compressed, err := encoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	payload, err := io.ReadAll(io.LimitReader(r, maxPayload+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(payload) > maxPayload {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrCorrupt, maxPayload)
	}

	minified, err := unmarshalObject(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return Expand(minified), nil
}

func marshalObject(m map[string]string) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var a fastjson.Arena
	obj := a.NewObject()
	for _, k := range keys {
		obj.Set(k, a.NewString(m[k]))
	}
	return obj.MarshalTo(nil)
}

func unmarshalObject(payload []byte) (map[string]string, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(payload)
	if err != nil {
		return nil, err
	}
	obj, err := v.Object()
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, obj.Len())
	var visitErr error
	obj.Visit(func(key []byte, val *fastjson.Value) {
		if visitErr != nil {
			return
		}
		s, err := val.StringBytes()
		if err != nil {
			visitErr = fmt.Errorf("value of %q: %w", key, err)
			return
		}
		out[string(key)] = string(s)
	})
	if visitErr != nil {
		return nil, visitErr
	}
	return out, nil
}

// Codec decodes URL state for callers that treat bad input as absent state
type Codec struct {
	log *logger.Logger
}

// NewCodec creates a codec that reports decode failures to log
func NewCodec(log *logger.Logger) *Codec {
	return &Codec{log: log}
}

// Decode returns the parameters encoded in s, or nil when s is empty or
// cannot be decoded.
func (c *Codec) Decode(s string) map[string]string {
	params, err := DecodeParams(s)
	if err != nil {
		if c.log != nil {
			c.log.DebugWithFields("ignoring query state", []logger.Field{
				logger.Error(err),
				logger.F("length", len(s)),
			})
		}
		return nil
	}
	return params
}

// DecodeState returns the state encoded in s, or nil when there is none
func (c *Codec) DecodeState(s string) *QueryState {
	params := c.Decode(s)
	if params == nil {
		return nil
	}
	state, err := FromParams(params)
	if err != nil {
		if c.log != nil {
			c.log.DebugWithFields("ignoring query state", []logger.Field{logger.Error(err)})
		}
		return nil
	}
	return &state
}

// FromURL decodes the state carried in the q parameter of rawURL
func (c *Codec) FromURL(rawURL string) map[string]string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if c.log != nil {
			c.log.Debug("ignoring unparsable URL %q: %v", rawURL, err)
		}
		return nil
	}
	return c.Decode(u.Query().Get(QueryParam))
}

// WithState returns pageURL with its q parameter set to encoded, or removed
// when encoded is empty.
func WithState(pageURL, encoded string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}
	query := u.Query()
	if encoded == "" {
		query.Del(QueryParam)
	} else {
		query.Set(QueryParam, encoded)
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}
