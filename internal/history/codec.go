package history

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrBadState indicates a persisted state record that cannot be decoded.
var ErrBadState = errors.New("malformed history state")

var knownTypes = map[string]bool{
	string(OpAddBlock):       true,
	string(OpRemoveBlock):    true,
	string(OpAddEdge):        true,
	string(OpRemoveEdge):     true,
	string(OpAddSubflow):     true,
	string(OpRemoveSubflow):  true,
	string(OpMoveBlock):      true,
	string(OpMoveSubflow):    true,
	string(OpDuplicateBlock): true,
	string(OpUpdateParent):   true,
}

// EncodeState serializes a store state for durable snapshotting.
func EncodeState(state State) ([]byte, error) {
	return json.Marshal(state)
}

// DecodeState parses a serialized store state. Before committing to struct
// decoding it walks the raw document and rejects any entry whose operation
// tag falls outside the closed type set, so a corrupt or future-versioned
// record fails loudly instead of rehydrating half-filled entries.
func DecodeState(data []byte) (State, error) {
	if !gjson.ValidBytes(data) {
		return State{}, fmt.Errorf("%w: invalid JSON", ErrBadState)
	}

	var walkErr error
	gjson.GetBytes(data, "stacksByKey").ForEach(func(key, stacks gjson.Result) bool {
		for _, stack := range []string{"undo", "redo"} {
			stacks.Get(stack).ForEach(func(_, entry gjson.Result) bool {
				for _, field := range []string{"operation.type", "inverse.type"} {
					tag := entry.Get(field).String()
					if !knownTypes[tag] {
						walkErr = fmt.Errorf("%w: key %q has unknown operation type %q", ErrBadState, key.String(), tag)
						return false
					}
				}
				return true
			})
			if walkErr != nil {
				return false
			}
		}
		return true
	})
	if walkErr != nil {
		return State{}, walkErr
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrBadState, err)
	}
	return state, nil
}
