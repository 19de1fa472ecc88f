package platform

import (
	"reflect"
	"testing"
)

func TestDetect(t *testing.T) {
	d := NewDetector(DefaultTable())

	tests := []struct {
		url      string
		expected string
		ok       bool
	}{
		{"https://www.youtube.com/watch?v=abc", YouTube, true},
		{"https://youtu.be/abc", YouTube, true},
		{"https://m.youtube.com/shorts/abc", YouTube, true},
		{"https://www.instagram.com/reel/xyz/", Instagram, true},
		{"https://vm.tiktok.com/ZM123/", TikTok, true},
		{"https://x.com/user/status/1", Twitter, true},
		{"https://pin.it/abc", Pinterest, true},
		{"https://old.reddit.com/r/videos/1", Reddit, true},
		{"https://vimeo.com/12345", Vimeo, true},
		{"https://www.netflix.com/title/1", "", false},
		{"https://example.com/youtube.com", "", false},
		{"not a url", "", false},
	}

	for _, test := range tests {
		name, ok := d.Detect(test.url)
		if ok != test.ok || name != test.expected {
			t.Errorf("Detect(%q): expected (%q, %v), got (%q, %v)", test.url, test.expected, test.ok, name, ok)
		}
	}
}

func TestDetectCustomTable(t *testing.T) {
	d := NewDetector(map[string]string{"WWW.Dailymotion.com": "Dailymotion", "": "Empty"})

	if name, ok := d.Detect("https://dailymotion.com/video/x1"); !ok || name != "Dailymotion" {
		t.Errorf("Expected Dailymotion, got %q (%v)", name, ok)
	}
	if _, ok := d.Detect("https://youtube.com/watch?v=1"); ok {
		t.Error("Expected YouTube to be unsupported with a custom table")
	}
}

func TestPlatforms(t *testing.T) {
	d := NewDetector(map[string]string{"x.com": Twitter, "twitter.com": Twitter, "vimeo.com": Vimeo})

	expected := []string{Twitter, Vimeo}
	if got := d.Platforms(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestExtractURL(t *testing.T) {
	tests := []struct {
		text     string
		expected string
		ok       bool
	}{
		{"look https://youtu.be/abc and http://x.com/1", "https://youtu.be/abc", true},
		{"http://vimeo.com/1\nthanks", "http://vimeo.com/1", true},
		{"no links here", "", false},
		{"ftp://example.com/file", "", false},
	}

	for _, test := range tests {
		got, ok := ExtractURL(test.text)
		if got != test.expected || ok != test.ok {
			t.Errorf("ExtractURL(%q): expected (%q, %v), got (%q, %v)", test.text, test.expected, test.ok, got, ok)
		}
	}
}
