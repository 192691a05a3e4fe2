package link

// decodeTrojan 解析 trojan://password@addr:port?query#note。
func decodeTrojan(body string) (ServerRecord, error) {
	ql, err := parseQueryLink(ProtocolTrojan, body)
	if err != nil {
		return ServerRecord{}, err
	}

	allowInsecure, err := flagParam(ProtocolTrojan, body, ql.Params, "allowInsecure")
	if err != nil {
		return ServerRecord{}, err
	}

	return ServerRecord{
		Protocol: ProtocolTrojan,
		UUID:     ql.UUID,
		Addr:     ql.Addr,
		Port:     ql.Port,
		Note:     ql.Note,
		Options: map[string]any{
			"allowInsecure": allowInsecure,
			"peer":          ql.Params.Get("peer"),
			"sni":           ql.Params.Get("sni"),
		},
	}, nil
}
