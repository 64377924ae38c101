package ephem

import "testing"

func TestLookupBody(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		command string
	}{
		{"Mars", "Mars", "499"},
		{"mars", "Mars", "499"},
		{"  JUPITER ", "Jupiter", "599"},
		{"Luna", "Moon", "301"},
		{"109P", "Swift-Tuttle", "DES=109P;CAP;NOFRAG"},
		{"swift_tuttle", "Swift-Tuttle", "DES=109P;CAP;NOFRAG"},
		{"Swift Tuttle", "Swift-Tuttle", "DES=109P;CAP;NOFRAG"},
		{"8p/tuttle", "Tuttle", "DES=8P;CAP;NOFRAG"},
		{"Ceres", "Ceres", "1;"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, ok := LookupBody(tc.name)
			if !ok {
				t.Fatalf("LookupBody(%q) not found", tc.name)
			}
			if b.Name != tc.want {
				t.Errorf("Name = %q, want %q", b.Name, tc.want)
			}
			if b.Command != tc.command {
				t.Errorf("Command = %q, want %q", b.Command, tc.command)
			}
		})
	}
}

func TestLookupBody_Unknown(t *testing.T) {
	if _, ok := LookupBody("Vulcan"); ok {
		t.Error("expected Vulcan to be unknown")
	}
}

func TestBodiesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, b := range Bodies {
		key := normalizeName(b.Name)
		if seen[key] {
			t.Errorf("duplicate body name %q", b.Name)
		}
		seen[key] = true
		if b.Command == "" {
			t.Errorf("%s has no Horizons command", b.Name)
		}
	}
}

func TestBodiesOfKind(t *testing.T) {
	planets := BodiesOfKind(KindPlanet)
	if len(planets) != 7 {
		t.Errorf("got %d planets, want 7", len(planets))
	}
	if planets[0].Name != "Mercury" {
		t.Errorf("first planet = %q, want catalog order", planets[0].Name)
	}
	for _, c := range BodiesOfKind(KindComet) {
		if c.Kind.String() != "comet" {
			t.Errorf("%s kind = %v", c.Name, c.Kind)
		}
	}
}
