package netx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilenameFromContentDisposition(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{name: "absent header", header: "", want: "", wantOK: false},
		{name: "whitespace only", header: "   ", want: "", wantOK: false},
		{name: "inline without filename", header: "inline", want: "", wantOK: false},
		{name: "quoted", header: `attachment; filename="tahrirlangan_hujjatlar.zip"`, want: "tahrirlangan_hujjatlar.zip", wantOK: true},
		{name: "unquoted token", header: "attachment; filename=hujjat.xlsx", want: "hujjat.xlsx", wantOK: true},
		{name: "unquoted followed by param", header: "attachment; filename=hujjat.xlsx; size=120", want: "hujjat.xlsx", wantOK: true},
		{name: "no space after semicolon", header: "attachment;filename=a.docx", want: "a.docx", wantOK: true},
		{name: "case-insensitive name", header: `attachment; FileName="Hisobot.xlsx"`, want: "Hisobot.xlsx", wantOK: true},
		{name: "spaces around equals", header: `attachment; filename = "a b.docx"`, want: "a b.docx", wantOK: true},
		{name: "quoted with semicolon inside", header: `attachment; filename="a;b.docx"`, want: "a;b.docx", wantOK: true},
		{name: "quoted with escaped quote", header: `attachment; filename="say \"hi\".docx"`, want: `say "hi".docx`, wantOK: true},
		{name: "percent-encoded quoted", header: `attachment; filename="modified_%D0%B4%D0%BE%D0%B3.docx"`, want: "modified_дог.docx", wantOK: true},
		{name: "percent-encoded token", header: "attachment; filename=oylik%20hisobot.xlsx", want: "oylik hisobot.xlsx", wantOK: true},
		{name: "broken percent kept raw", header: `attachment; filename="100%.docx"`, want: "100%.docx", wantOK: true},
		{name: "empty quoted value", header: `attachment; filename=""`, want: "", wantOK: false},
		{name: "extended only", header: "attachment; filename*=UTF-8''Shartnoma%20%E2%84%961.docx", want: "Shartnoma №1.docx", wantOK: true},
		{name: "extended preferred over plain", header: `attachment; filename="fallback.docx"; filename*=utf-8''asl%20nom.docx`, want: "asl nom.docx", wantOK: true},
		{name: "extended with language", header: "attachment; filename*=UTF-8'uz'hujjat.docx", want: "hujjat.docx", wantOK: true},
		{name: "extended unknown charset falls back", header: `attachment; filename*=koi8-r''x.docx; filename="plain.docx"`, want: "plain.docx", wantOK: true},
		{name: "extended malformed falls back", header: `attachment; filename*=broken; filename=plain.docx`, want: "plain.docx", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FilenameFromContentDisposition(tt.header)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
