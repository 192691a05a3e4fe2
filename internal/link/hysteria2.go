package link

// decodeHysteria2 解析 hysteria2://auth@addr:port?query#note。
func decodeHysteria2(body string) (ServerRecord, error) {
	ql, err := parseQueryLink(ProtocolHysteria2, body)
	if err != nil {
		return ServerRecord{}, err
	}

	insecure, err := flagParam(ProtocolHysteria2, body, ql.Params, "insecure")
	if err != nil {
		return ServerRecord{}, err
	}

	return ServerRecord{
		Protocol: ProtocolHysteria2,
		UUID:     ql.UUID,
		Addr:     ql.Addr,
		Port:     ql.Port,
		Note:     ql.Note,
		Options: map[string]any{
			"insecure": insecure,
			"security": ql.Params.Get("security"),
			"sni":      ql.Params.Get("sni"),
		},
	}, nil
}
