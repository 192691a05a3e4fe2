package link

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerRecordJSONFlat(t *testing.T) {
	rec := ServerRecord{
		Protocol: ProtocolTrojan,
		UUID:     "pw",
		Addr:     "example.com",
		Port:     "443",
		Note:     "n",
		Options: map[string]any{
			"allowInsecure": true,
			"sni":           "bar",
			"uuid":          "ignored",
		},
		Index: 3,
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"uuid":"pw","addr":"example.com","port":"443","protocol":"trojan","note":"n","allowInsecure":true,"sni":"bar","index":3}`, string(data))

	var back ServerRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "pw", back.UUID)
	assert.Equal(t, 3, back.Index)
	assert.True(t, back.BoolOption("allowInsecure"))
	assert.Equal(t, "bar", back.Option("sni"))
}

func TestServerRecordUnmarshalNumericPort(t *testing.T) {
	var rec ServerRecord
	require.NoError(t, json.Unmarshal([]byte(`{"uuid":"u","addr":"a","port":8443,"protocol":"vmess","note":""}`), &rec))
	assert.Equal(t, "8443", rec.Port)
	assert.Equal(t, ProtocolVMess, rec.Protocol)
	assert.True(t, rec.Protocol.Known())
	assert.False(t, ProtocolID("tuic").Known())
}
