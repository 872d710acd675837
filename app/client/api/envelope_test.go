package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID int `json:"id"`
}

func TestDecodeList(t *testing.T) {
	t.Run("rows at top level", func(t *testing.T) {
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(`{
			"statusCode": 200,
			"data": [{"id": 1}, {"id": 2}],
			"total": 12,
			"per_page": 10,
			"current_page": 1,
			"last_page": 2,
			"datatable_column": [{"key": "event", "label": "Event", "show": true, "sortable": true}]
		}`), &env))

		list, err := DecodeList[item](&env)
		require.NoError(t, err)
		assert.Equal(t, []item{{1}, {2}}, list.Items)
		assert.Equal(t, 12, list.Total)
		assert.Equal(t, 2, list.LastPage)
		require.Len(t, list.Columns(), 1)
		assert.Equal(t, "event", list.Columns()[0].EffectiveKey())
	})

	t.Run("nested paginator", func(t *testing.T) {
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(`{
			"statusCode": 200,
			"data": {"data": [{"id": 3}], "total": 1, "current_page": 1, "column": [{"key": "id", "label": "ID", "show": true}]}
		}`), &env))

		list, err := DecodeList[item](&env)
		require.NoError(t, err)
		assert.Equal(t, []item{{3}}, list.Items)
		assert.Equal(t, 1, list.Total)
		assert.Equal(t, "id", list.Columns()[0].Key)
	})

	t.Run("null data", func(t *testing.T) {
		env := Envelope{StatusCode: 200, Data: json.RawMessage("null")}

		list, err := DecodeList[item](&env)
		require.NoError(t, err)
		assert.Empty(t, list.Items)
		assert.Zero(t, list.Total)
	})
}

func TestEnvelope_FieldErrors(t *testing.T) {
	env := Envelope{Errors: json.RawMessage(`{"name": "The name field is required."}`)}
	assert.Equal(t, map[string][]string{"name": {"The name field is required."}}, env.FieldErrors())

	env = Envelope{Errors: json.RawMessage(`{"name": ["too short", "invalid"]}`)}
	assert.Equal(t, map[string][]string{"name": {"too short", "invalid"}}, env.FieldErrors())

	assert.Nil(t, (&Envelope{}).FieldErrors())
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, MsgUnauthorized, StatusMessage(401))
	assert.Equal(t, MsgForbidden, StatusMessage(403))
	assert.Equal(t, MsgNotFound, StatusMessage(404))
	assert.Equal(t, MsgValidation, StatusMessage(422))
	assert.Equal(t, MsgServerError, StatusMessage(500))
	assert.Equal(t, MsgUnavailable, StatusMessage(503))
	assert.Equal(t, MsgUnknownAPIError, StatusMessage(418))
}

func TestJoinIDs(t *testing.T) {
	assert.Equal(t, "7", JoinIDs([]int64{7}))
	assert.Equal(t, "1,2,3", JoinIDs([]int64{1, 2, 3}))
	assert.Equal(t, "", JoinIDs(nil))
}
