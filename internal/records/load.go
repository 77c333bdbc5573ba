package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
)

// Sentinel errors for file-level input problems. Record-level problems are
// never reported; bad records are skipped or defaulted.
var (
	ErrInputNotFound   = errors.New("input file does not exist")
	ErrNotJSON         = errors.New("input is not valid JSON")
	ErrUnexpectedShape = errors.New("input JSON has an unexpected shape")
)

// ReadInput reads path and checks that it holds well-formed JSON.
func ReadInput(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrInputNotFound)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, ErrInputNotFound)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotJSON)
	}
	return data, nil
}

// LoadConversations reads a JSON list of conversation records.
func LoadConversations(path string) ([]Conversation, error) {
	data, err := ReadInput(path)
	if err != nil {
		return nil, err
	}
	return ParseConversations(data)
}

// ParseConversations decodes a JSON list of conversation records. Entries
// that are not objects are skipped.
func ParseConversations(data []byte) ([]Conversation, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, shapeError("a list of conversations", err)
	}

	convs := make([]Conversation, 0, len(raws))
	for _, raw := range raws {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			continue
		}
		c := decodeConversation(obj)
		c.Raw = raw
		convs = append(convs, c)
	}
	return convs, nil
}

func decodeConversation(obj map[string]any) Conversation {
	var c Conversation
	if err := decode(obj, &c); err != nil {
		// Header fields are optional; keep the lists usable.
		c = Conversation{}
	}

	c.ModelConfigs = decodeList[ModelConfig](obj["modelConfigs"], nil)
	c.ModelEvaluations = decodeList(obj["modelEvaluations"], func(src map[string]any, e *ModelEvaluation) {
		e.HasErrorType = present(src, "error type")
	})
	c.PromptEvaluations = decodeList(obj["promptEvaluations"], func(src map[string]any, p *PromptEvaluation) {
		p.HasPromptType = present(src, "prompt type")
		p.HasComplexity = present(src, "complexity")
		p.HasLegacyComplexity = present(src, "promptEvaluations.complexity")
	})
	c.ModelResponses = decodeList[ModelResponse](obj["modelResponses"], nil)
	return c
}

// LoadFlatRecords reads a JSON object mapping record IDs to flat records.
func LoadFlatRecords(path string) ([]FlatRecord, error) {
	data, err := ReadInput(path)
	if err != nil {
		return nil, err
	}
	return ParseFlatRecords(data)
}

// ParseFlatRecords decodes a record map. Records are returned sorted by ID.
// Only scalar fields are kept; nulls, objects and arrays are treated as
// absent.
func ParseFlatRecords(data []byte) ([]FlatRecord, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, shapeError("an object of records keyed by ID", err)
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]FlatRecord, 0, len(ids))
	for _, id := range ids {
		var obj map[string]any
		if err := json.Unmarshal(raw[id], &obj); err != nil || obj == nil {
			continue
		}
		fields := make(map[string]string, len(obj))
		for k, v := range obj {
			switch v.(type) {
			case string, float64, bool:
				var s string
				if err := decode(v, &s); err == nil {
					fields[k] = s
				}
			}
		}
		out = append(out, FlatRecord{ID: id, Fields: fields})
	}
	return out, nil
}

func shapeError(want string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	return fmt.Errorf("expected %s: %w", want, ErrUnexpectedShape)
}
