package xray

import "github.com/creamcroissant/sub2xray/internal/rules"

const domainStrategy = "IPIfNonMatch"

// 固定规则的匹配内容。
var (
	regionalDomains = []string{"geosite:cn"}
	regionalIPs     = []string{"geoip:private", "geoip:cn"}
	adDomains       = []string{"geosite:category-ads-all"}
)

const fullPortRange = "0-65535"

// Routing builds the routing table. Downstream matching is first-match-wins,
// so the order below is part of the output contract:
//
//  1. direct_1st domains  -> direct
//  2. proxy_1st domains   -> proxy
//  3. direct_2nd domain+source -> direct (both non-empty)
//  4. proxy_2nd domain+source  -> proxy  (both non-empty)
//  5. geosite:cn          -> direct
//  6. geoip:private/cn    -> direct
//  7. ads                 -> block
//  8. proxy_3rd sources   -> proxy
//  9. every port          -> direct
func (a *Assembler) Routing(rs rules.RuleSet) Routing {
	out := make([]RoutingRule, 0, 9)

	if len(rs.DirectFirst.Domain) > 0 {
		out = append(out, RoutingRule{Type: "field", OutboundTag: TagDirect, Domain: clone(rs.DirectFirst.Domain)})
	}
	if len(rs.ProxyFirst.Domain) > 0 {
		out = append(out, RoutingRule{Type: "field", OutboundTag: TagProxy, Domain: clone(rs.ProxyFirst.Domain)})
	}
	if len(rs.DirectSecond.Domain) > 0 && len(rs.DirectSecond.Source) > 0 {
		out = append(out, RoutingRule{
			Type:        "field",
			OutboundTag: TagDirect,
			Domain:      clone(rs.DirectSecond.Domain),
			Source:      clone(rs.DirectSecond.Source),
		})
	}
	if len(rs.ProxySecond.Domain) > 0 && len(rs.ProxySecond.Source) > 0 {
		out = append(out, RoutingRule{
			Type:        "field",
			OutboundTag: TagProxy,
			Domain:      clone(rs.ProxySecond.Domain),
			Source:      clone(rs.ProxySecond.Source),
		})
	}

	out = append(out,
		RoutingRule{Type: "field", OutboundTag: TagDirect, Domain: clone(regionalDomains)},
		RoutingRule{Type: "field", OutboundTag: TagDirect, IP: clone(regionalIPs)},
		RoutingRule{Type: "field", OutboundTag: TagBlock, Domain: clone(adDomains)},
	)

	if len(rs.ProxyThird.Source) > 0 {
		out = append(out, RoutingRule{Type: "field", OutboundTag: TagProxy, Source: clone(rs.ProxyThird.Source)})
	}

	out = append(out, RoutingRule{Type: "field", OutboundTag: TagDirect, Port: fullPortRange})

	return Routing{DomainStrategy: domainStrategy, Rules: out}
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
