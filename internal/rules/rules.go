// Package rules holds the user-maintained routing rule set.
package rules

// DomainBucket 只包含域名模式。
type DomainBucket struct {
	Note   string   `json:"Note,omitempty" yaml:"Note,omitempty"`
	Domain []string `json:"domain" yaml:"domain"`
}

// MixedBucket 同时包含域名与来源模式，两者都非空时才生效。
type MixedBucket struct {
	Note   string   `json:"Note,omitempty" yaml:"Note,omitempty"`
	Domain []string `json:"domain" yaml:"domain"`
	Source []string `json:"source" yaml:"source"`
}

// SourceBucket 只包含来源模式。
type SourceBucket struct {
	Note   string   `json:"Note,omitempty" yaml:"Note,omitempty"`
	Source []string `json:"source" yaml:"source"`
}

// RuleSet 是五个按优先级排列的规则桶。
type RuleSet struct {
	DirectFirst  DomainBucket `json:"direct_1st" yaml:"direct_1st"`
	ProxyFirst   DomainBucket `json:"proxy_1st" yaml:"proxy_1st"`
	DirectSecond MixedBucket  `json:"direct_2nd" yaml:"direct_2nd"`
	ProxySecond  MixedBucket  `json:"proxy_2nd" yaml:"proxy_2nd"`
	ProxyThird   SourceBucket `json:"proxy_3rd" yaml:"proxy_3rd"`
}

// Default returns the built-in rule set written when no rules file exists.
func Default() RuleSet {
	return RuleSet{
		DirectFirst: DomainBucket{
			Note:   "e.g. domain",
			Domain: []string{"domain:baidu.com", "domain:youdao.com"},
		},
		ProxyFirst: DomainBucket{
			Note: "e.g. domain",
			Domain: []string{
				// OpenAI
				"domain:chat.openai.com",
				"domain:cdn.openai.com",
				"domain:beacons.gcp.gvt2.com",
				"domain:widget.intercom.io",
				"domain:tcr9i.chat.openai.com",
				"domain:api-iam.intercom.io",
				"domain:events.statsigapi.net",
				// GitHub
				"domain:github.com",
				// Spotify
				"domain:pscdn.co",
				"domain:scdn.co",
				"domain:spoti.fi",
				"domain:spotifycdn.com",
				"domain:spotifycdn.net",
				"domain:spotifycharts.com",
				"domain:spotifycodes.com",
				"domain:spotify.com",
				"domain:spotifyjobs.com",
				"domain:spotifynewsroom.jp",
				"domain:spotilocal.com",
				"domain:tospotify.com",
			},
		},
		DirectSecond: MixedBucket{
			Note:   "e.g. domain & source mix",
			Domain: []string{},
			Source: []string{},
		},
		ProxySecond: MixedBucket{
			Note:   "e.g. domain & source mix",
			Domain: []string{},
			Source: []string{},
		},
		ProxyThird: SourceBucket{
			Note:   "e.g. 192.168.2.2 (IP firstly)",
			Source: []string{},
		},
	}
}
