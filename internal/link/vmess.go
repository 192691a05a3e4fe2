package link

import (
	"fmt"

	"github.com/tidwall/gjson"
)

var vmessRequiredKeys = []string{"id", "port", "add", "ps"}

// decodeVMess 解析 vmess://base64(JSON)。载荷只按 JSON 解析，必须是对象且包含
// id、port、add、ps 四个键；port 可以是字符串或数字。
func decodeVMess(body string) (ServerRecord, error) {
	plain, err := decodeBase64(body)
	if err != nil {
		return ServerRecord{}, decodeErr(ProtocolVMess, body, "", err)
	}
	if !gjson.Valid(plain) {
		return ServerRecord{}, decodeErr(ProtocolVMess, body, "", fmt.Errorf("payload is not valid JSON"))
	}
	doc := gjson.Parse(plain)
	if !doc.IsObject() {
		return ServerRecord{}, decodeErr(ProtocolVMess, body, "", fmt.Errorf("payload is not a JSON object"))
	}

	values := doc.Map()
	for _, key := range vmessRequiredKeys {
		if _, ok := values[key]; !ok {
			return ServerRecord{}, decodeErr(ProtocolVMess, body, key, fmt.Errorf("missing key"))
		}
	}

	rec := ServerRecord{
		Protocol: ProtocolVMess,
		UUID:     values["id"].String(),
		Port:     values["port"].String(),
		Addr:     values["add"].String(),
		Note:     SanitizeEscapedNote(values["ps"].Raw),
	}
	if err := requireEndpoint(ProtocolVMess, body, rec.UUID, rec.Addr, rec.Port); err != nil {
		return ServerRecord{}, err
	}
	return rec, nil
}
