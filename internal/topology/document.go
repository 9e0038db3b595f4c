// Package topology parses the declarative farm/zone topology document and
// resolves per-zone configuration with zone > farm > defaults > hard-coded
// precedence (spec §3, §6; original_source/common/config.py get_config).
package topology

import "encoding/json"

// ZoneEntry is a zone in a Farm's zone list. The document allows either a
// bare zone-id string or an object with an inline config subtree.
type ZoneEntry struct {
	ID     string
	Config map[string]any
}

// UnmarshalJSON accepts `"zoneA"` or `{"id":"zoneA","config":{...}}`.
func (z *ZoneEntry) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		z.ID = asString
		z.Config = nil
		return nil
	}
	var asObject struct {
		ID     string         `json:"id"`
		Config map[string]any `json:"config"`
	}
	if err := json.Unmarshal(data, &asObject); err != nil {
		return err
	}
	z.ID = asObject.ID
	z.Config = asObject.Config
	return nil
}

// Farm groups zones under one farm-level config subtree.
type Farm struct {
	ID     string         `json:"id"`
	Zones  []ZoneEntry    `json:"zones"`
	Config map[string]any `json:"config"`
}

// Document is the full topology file: `system_config.json`.
type Document struct {
	Farms    []Farm         `json:"farms"`
	Defaults map[string]any `json:"defaults"`
}

// Parse decodes a topology document from raw JSON bytes.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ZoneKeys returns every (farm, zone) pair named in the document, collapsing
// duplicate zone entries within a farm (spec §4.2 idempotence invariant).
func (d *Document) ZoneKeys() []FarmZone {
	var out []FarmZone
	seen := make(map[FarmZone]bool)
	for _, f := range d.Farms {
		for _, z := range f.Zones {
			fz := FarmZone{Farm: f.ID, Zone: z.ID}
			if seen[fz] {
				continue
			}
			seen[fz] = true
			out = append(out, fz)
		}
	}
	return out
}

// FarmZone is a lightweight (farm, zone) pair used for topology iteration.
type FarmZone struct {
	Farm string
	Zone string
}

func (d *Document) farm(id string) *Farm {
	for i := range d.Farms {
		if d.Farms[i].ID == id {
			return &d.Farms[i]
		}
	}
	return nil
}

func (d *Document) zone(farmID, zoneID string) *ZoneEntry {
	f := d.farm(farmID)
	if f == nil {
		return nil
	}
	for i := range f.Zones {
		if f.Zones[i].ID == zoneID {
			return &f.Zones[i]
		}
	}
	return nil
}

// Get resolves a single config key with precedence zone > farm > defaults.
// Returns (value, true) if found at any tier, else (nil, false). The
// hard-coded fallback tier lives in model.DefaultZoneConfig, not here.
func (d *Document) Get(key, farmID, zoneID string) (any, bool) {
	if z := d.zone(farmID, zoneID); z != nil && z.Config != nil {
		if v, ok := z.Config[key]; ok {
			return v, true
		}
	}
	if f := d.farm(farmID); f != nil && f.Config != nil {
		if v, ok := f.Config[key]; ok {
			return v, true
		}
	}
	if d.Defaults != nil {
		if v, ok := d.Defaults[key]; ok {
			return v, true
		}
	}
	return nil, false
}
