package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fallback = time.Date(2020, time.January, 15, 0, 0, 0, 0, time.UTC)

func TestParse_SingleObject(t *testing.T) {
	raw := []byte(`{"app":{"title":"Half-Life 2","steam":{"appId":220}},"timestamp":1580000000}`)

	records, failures := Parse(raw, fallback)
	require.Empty(t, failures)
	require.Len(t, records, 1)

	assert.Equal(t, int64(220), records[0].AppID)
	assert.Equal(t, "Half-Life 2", records[0].Title)
	assert.Equal(t, time.Unix(1580000000, 0).UTC(), records[0].ObservedAt)
}

func TestParse_StringAppID(t *testing.T) {
	raw := []byte(`{"app":{"title":"Portal","steam":{"appId":"400"}}}`)

	records, failures := Parse(raw, fallback)
	require.Empty(t, failures)
	require.Len(t, records, 1)
	assert.Equal(t, int64(400), records[0].AppID)
}

func TestParse_FallbackTimestampWhenRecordHasNone(t *testing.T) {
	raw := []byte(`{"app":{"title":"Portal","steam":{"appId":400}}}`)

	records, failures := Parse(raw, fallback)
	require.Empty(t, failures)
	require.Len(t, records, 1)
	assert.Equal(t, fallback, records[0].ObservedAt)
}

func TestParse_MalformedInput(t *testing.T) {
	for name, raw := range map[string][]byte{
		"garbage":   []byte(`{"app": this is not json`),
		"empty":     []byte(``),
		"oops list": []byte(`[{"app":`),
	} {
		t.Run(name, func(t *testing.T) {
			records, failures := Parse(raw, fallback)
			assert.Empty(t, records)
			require.Len(t, failures, 1)
			assert.Equal(t, KindMalformedInput, failures[0].Kind)
		})
	}
}

func TestParse_MissingAppID(t *testing.T) {
	for name, raw := range map[string][]byte{
		"absent":      []byte(`{"app":{"title":"No ID"}}`),
		"null":        []byte(`{"app":{"title":"No ID","steam":{"appId":null}}}`),
		"non-numeric": []byte(`{"app":{"title":"No ID","steam":{"appId":"abc"}}}`),
	} {
		t.Run(name, func(t *testing.T) {
			records, failures := Parse(raw, fallback)
			assert.Empty(t, records)
			require.Len(t, failures, 1)
			assert.Equal(t, KindMissingAppID, failures[0].Kind)
		})
	}
}

func TestParse_ArrayMixedValidity(t *testing.T) {
	raw := []byte(`[
		{"app":{"title":"Good","steam":{"appId":10}},"timestamp":1500000000},
		{"app":{"title":"Bad"}},
		{"app":{"title":"Also Good","steam":{"appId":20}}}
	]`)

	records, failures := Parse(raw, fallback)
	require.Len(t, records, 2)
	require.Len(t, failures, 1)

	assert.Equal(t, int64(10), records[0].AppID)
	assert.Equal(t, int64(20), records[1].AppID)
	assert.Equal(t, KindMissingAppID, failures[0].Kind)
	assert.Contains(t, failures[0].Detail, "element 1")
}

func TestFailure_Error(t *testing.T) {
	f := Failure{Kind: KindMalformedInput, Detail: "unexpected token"}
	assert.Contains(t, f.Error(), "malformed_input")
	assert.Contains(t, f.Error(), "unexpected token")
}
