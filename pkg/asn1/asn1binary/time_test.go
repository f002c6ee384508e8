package asn1binary

import (
	"testing"
	"time"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

func timeElement(number uint32, s string) asn1go.RawValue {
	return asn1go.RawValue{Tag: asn1core.NewUniversal(number), Content: []byte(s)}
}

func TestParseUTCTime(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
	}{
		{"910506234540Z", time.Date(1991, 5, 6, 23, 45, 40, 0, time.UTC)},
		{"491231235959Z", time.Date(2049, 12, 31, 23, 59, 59, 0, time.UTC)},
		{"500101000000Z", time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"910506164540-0700", time.Date(1991, 5, 6, 23, 45, 40, 0, time.UTC)},
	}
	for _, test := range tests {
		t.Run(test.text, func(t *testing.T) {
			got, err := ParseUTCTime(timeElement(asn1core.TagUTCTime, test.text))
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(test.want) {
				t.Errorf("got %v, want %v", got, test.want)
			}
		})
	}

	for _, bad := range []string{"", "9105062345Z", "910506234540", "911306234540Z", "910230234540Z", "910506234540+07", "91050623454aZ"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseUTCTime(timeElement(asn1core.TagUTCTime, bad))
			expectError(t, err, "Invalid UTCTime")
		})
	}
}

func TestParseGeneralizedTime(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
	}{
		{"19920521000000Z", time.Date(1992, 5, 21, 0, 0, 0, 0, time.UTC)},
		{"19920622123421.5Z", time.Date(1992, 6, 22, 12, 34, 21, 5e8, time.UTC)},
		{"19920622123421,25Z", time.Date(1992, 6, 22, 12, 34, 21, 25e7, time.UTC)},
		{"1992062212Z", time.Date(1992, 6, 22, 12, 0, 0, 0, time.UTC)},
		{"1992062212.5Z", time.Date(1992, 6, 22, 12, 30, 0, 0, time.UTC)},
		{"199206221234.5", time.Date(1992, 6, 22, 12, 34, 30, 0, time.UTC)},
		{"19920622123421+01", time.Date(1992, 6, 22, 11, 34, 21, 0, time.UTC)},
		{"19920622123421-0130", time.Date(1992, 6, 22, 14, 4, 21, 0, time.UTC)},
	}
	for _, test := range tests {
		t.Run(test.text, func(t *testing.T) {
			got, err := ParseGeneralizedTime(timeElement(asn1core.TagGeneralizedTime, test.text))
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(test.want) {
				t.Errorf("got %v, want %v", got, test.want)
			}
		})
	}

	for _, bad := range []string{"", "199205", "19920521000000.Z", "19920521000000X", "19921321000000Z", "19920521250000Z"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseGeneralizedTime(timeElement(asn1core.TagGeneralizedTime, bad))
			expectError(t, err, "Invalid GeneralizedTime")
		})
	}
}

func TestTimeContent(t *testing.T) {
	ts := time.Date(2023, 1, 2, 3, 4, 5, 120e6, time.UTC)
	if got := string(GeneralizedTimeContent(ts)); got != "20230102030405.12Z" {
		t.Errorf("got %s, want 20230102030405.12Z", got)
	}
	zoned := time.Date(2023, 1, 2, 3, 4, 5, 0, time.FixedZone("", -5*3600))
	if got := string(GeneralizedTimeContent(zoned)); got != "20230102030405-0500" {
		t.Errorf("got %s, want 20230102030405-0500", got)
	}
	utc, err := UTCTimeContent(ts)
	if err != nil {
		t.Fatal(err)
	}
	if string(utc) != "230102030405Z" {
		t.Errorf("got %s, want 230102030405Z", utc)
	}
	_, err = UTCTimeContent(time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC))
	expectError(t, err, "Invalid UTCTime")
}
