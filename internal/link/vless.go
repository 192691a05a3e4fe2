package link

// decodeVLESS 解析 vless://uuid@addr:port?query#note。所有查询参数（取首个值）
// 原样并入 Options；method 参数进入 Method，与核心字段同名的参数被忽略。
func decodeVLESS(body string) (ServerRecord, error) {
	ql, err := parseQueryLink(ProtocolVLESS, body)
	if err != nil {
		return ServerRecord{}, err
	}

	rec := ServerRecord{
		Protocol: ProtocolVLESS,
		UUID:     ql.UUID,
		Addr:     ql.Addr,
		Port:     ql.Port,
		Method:   ql.Params.Get("method"),
		Note:     ql.Note,
		Options:  make(map[string]any, len(ql.Params)),
	}
	for key := range ql.Params {
		if IsReservedKey(key) {
			continue
		}
		rec.Options[key] = ql.Params.Get(key)
	}
	return rec, nil
}
