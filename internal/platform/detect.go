package platform

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Platform names
const (
	YouTube   = "YouTube"
	Instagram = "Instagram"
	TikTok    = "TikTok"
	Facebook  = "Facebook"
	Twitter   = "Twitter"
	Pinterest = "Pinterest"
	Reddit    = "Reddit"
	Vimeo     = "Vimeo"
)

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// DefaultTable maps domains to platform names
func DefaultTable() map[string]string {
	return map[string]string{
		"youtube.com":   YouTube,
		"youtu.be":      YouTube,
		"instagram.com": Instagram,
		"tiktok.com":    TikTok,
		"facebook.com":  Facebook,
		"fb.com":        Facebook,
		"fb.watch":      Facebook,
		"twitter.com":   Twitter,
		"x.com":         Twitter,
		"pinterest.com": Pinterest,
		"pin.it":        Pinterest,
		"reddit.com":    Reddit,
		"vimeo.com":     Vimeo,
	}
}

// Rule maps one domain to a platform name
type Rule struct {
	Domain string
	Name   string
}

// Detector resolves URLs to platform names using a domain table
type Detector struct {
	rules []Rule
}

// NewDetector creates a detector for table; longer domains match first
func NewDetector(table map[string]string) *Detector {
	rules := make([]Rule, 0, len(table))
	for domain, name := range table {
		domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "www.")
		if domain == "" || name == "" {
			continue
		}
		rules = append(rules, Rule{Domain: domain, Name: name})
	}
	sort.Slice(rules, func(i, j int) bool {
		if len(rules[i].Domain) != len(rules[j].Domain) {
			return len(rules[i].Domain) > len(rules[j].Domain)
		}
		return rules[i].Domain < rules[j].Domain
	})
	return &Detector{rules: rules}
}

// Detect returns the platform name for rawURL. The host must equal a table
// domain or be a subdomain of it.
func (d *Detector) Detect(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())

	for _, r := range d.rules {
		if host == r.Domain || strings.HasSuffix(host, "."+r.Domain) {
			return r.Name, true
		}
	}
	return "", false
}

// Platforms returns the distinct platform names, sorted
func (d *Detector) Platforms() []string {
	seen := make(map[string]bool, len(d.rules))
	names := make([]string, 0, len(d.rules))
	for _, r := range d.rules {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	sort.Strings(names)
	return names
}

// ExtractURL returns the first http(s) URL found in text
func ExtractURL(text string) (string, bool) {
	match := urlPattern.FindString(text)
	if match == "" {
		return "", false
	}
	return match, true
}
