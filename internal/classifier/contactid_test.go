package classifier

import "testing"

func TestDecodeContactID(t *testing.T) {
	cases := []struct {
		name      string
		digits    string
		qualifier byte
		code      string
		partition int
		zoneUser  int
	}{
		{"nine digits", "130101005", '1', "301", 1, 5},
		{"ten digits checksum ignored", "3441010029", '3', "441", 1, 2},
		{"leading zeros stripped", "1100010090", '1', "100", 1, 9},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cid, ok := decodeContactID(tc.digits)
			if !ok {
				t.Fatalf("decode failed for %q", tc.digits)
			}
			if cid.Qualifier != tc.qualifier {
				t.Fatalf("qualifier = %c, want %c", cid.Qualifier, tc.qualifier)
			}
			if cid.Code != tc.code {
				t.Fatalf("code = %q, want %q", cid.Code, tc.code)
			}
			if cid.Partition != tc.partition {
				t.Fatalf("partition = %d, want %d", cid.Partition, tc.partition)
			}
			if cid.ZoneUser != tc.zoneUser {
				t.Fatalf("zone/user = %d, want %d", cid.ZoneUser, tc.zoneUser)
			}
		})
	}
}

func TestDecodeContactIDShortRun(t *testing.T) {
	for _, digits := range []string{"", "1", "12345678"} {
		if _, ok := decodeContactID(digits); ok {
			t.Fatalf("decode of %q succeeded, want failure", digits)
		}
	}
}

func TestContactIDEventLabel(t *testing.T) {
	cases := []struct {
		name      string
		qualifier byte
		code      string
		want      string
	}{
		{"arm family new is disarm", '1', "401", "Disarmed"},
		{"arm family restore generic", '3', "401", "Armed"},
		{"armed stay", '3', "441", "Armed Stay"},
		{"armed away", '3', "442", "Armed Away"},
		{"armed night", '3', "443", "Armed Night"},
		{"arm family odd qualifier uses table", '6', "441", "Armed Stay/Disarmed"},
		{"alarm band low", '1', "100", "Alarm"},
		{"alarm band high", '3', "140", "Alarm"},
		{"alarm band boundary", '1', "199", "Alarm"},
		{"supervisory from table", '1', "301", "AC Power Loss"},
		{"test from table", '1', "601", "Manual Test"},
		{"unknown code", '1', "999", "CID 999"},
		{"code 200 not alarm band", '1', "200", "CID 200"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cid := contactID{Qualifier: tc.qualifier, Code: tc.code}
			if got := cid.EventLabel(); got != tc.want {
				t.Fatalf("label = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestContactIDDescription(t *testing.T) {
	if got := (contactID{Code: "441"}).Description(); got != "Armed Stay/Disarmed" {
		t.Fatalf("description = %q", got)
	}
	if got := (contactID{Code: "999"}).Description(); got != "Unknown (999)" {
		t.Fatalf("description = %q", got)
	}
}
