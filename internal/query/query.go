// Package query executes lookups against a dataset and shapes the results
// as protocol payloads. HTTP handlers and the websocket channel both go
// through it.
package query

import (
	"encoding/json"
	"fmt"

	"fdv.tools/internal/catalogs"
	"fdv.tools/internal/levelimport"
	"fdv.tools/internal/planner"
	"fdv.tools/internal/protocol"
	"fdv.tools/internal/slots"
)

// Service is safe for concurrent use; the dataset is immutable.
type Service struct {
	ds *catalogs.Dataset
}

func New(ds *catalogs.Dataset) *Service {
	return &Service{ds: ds}
}

func (s *Service) Dataset() *catalogs.Dataset { return s.ds }

func (s *Service) Meta() protocol.MetaResponse {
	return protocol.MetaResponse{
		ProtocolVersion: protocol.Version,
		Variant:         s.ds.Variant(),
		Digest:          s.ds.Digest(),
		Variants:        catalogs.Variants(),
		RaceCount:       len(s.ds.Races()),
	}
}

func (s *Service) DatasetInfo() protocol.DatasetInfo {
	info := protocol.DatasetInfo{Variant: s.ds.Variant(), Digest: s.ds.Digest()}
	for _, r := range s.ds.Races() {
		info.Races = append(info.Races, r.Key())
	}
	return info
}

func (s *Service) Races() protocol.RacesResponse {
	out := protocol.RacesResponse{
		Variant:    s.ds.Variant(),
		Slots:      slots.Labels(),
		Population: s.ds.PopulationTable(),
	}
	for _, r := range s.ds.Races() {
		out.Races = append(out.Races, protocol.RaceInfo{
			Key:       r.Key(),
			Display:   r.Display(),
			Color:     r.Color(),
			Aliases:   r.Aliases(),
			Buildings: buildingInfos(r.Buildings()),
		})
	}
	return out
}

func (s *Service) Slot(req protocol.SlotRequest) (protocol.SlotResponse, error) {
	rq, err := planner.Resolve(s.ds, req.Race, req.Slot.String())
	if err != nil {
		return protocol.SlotResponse{}, err
	}
	out := protocol.SlotResponse{
		Race:        rq.Race.Key(),
		RaceDisplay: rq.Race.Display(),
		Slot:        rq.Ref.Slot,
		Label:       rq.Ref.Label(),
		Tier:        rq.Ref.Tier,
		Sub:         rq.Ref.Sub,
		Population:  rq.Population,
		Levels:      rq.Levels(),
	}
	for _, b := range rq.Buildings {
		out.Buildings = append(out.Buildings, protocol.LevelEntry{
			Index: b.Index,
			Key:   b.Building.Key,
			Icon:  b.Building.Icon,
			Name:  b.Building.Name,
			Level: b.Level,
		})
	}
	return out, nil
}

func (s *Service) Full(req protocol.FullRequest) (protocol.FullResponse, error) {
	if _, err := planner.ResolveRace(s.ds, req.Race); err != nil {
		return protocol.FullResponse{}, err
	}
	tier, err := planner.ParseTier(req.Tier.String())
	if err != nil {
		return protocol.FullResponse{}, err
	}
	tt, err := planner.FullTier(s.ds, req.Race, tier)
	if err != nil {
		return protocol.FullResponse{}, err
	}
	return protocol.FullResponse{
		Race:        tt.Race.Key(),
		RaceDisplay: tt.Race.Display(),
		Tier:        tt.Tier,
		Slots:       tt.Slots,
		Labels:      tt.Labels,
		Population:  tt.Population,
		Buildings:   buildingInfos(tt.Race.Buildings()),
		Rows:        tt.Rows,
	}, nil
}

func (s *Service) Delta(req protocol.DeltaRequest) (protocol.DeltaResponse, error) {
	rq, err := planner.Resolve(s.ds, req.Race, req.Slot.String())
	if err != nil {
		return protocol.DeltaResponse{}, err
	}
	d, err := planner.ComputeDelta(rq, req.Current)
	if err != nil {
		return protocol.DeltaResponse{}, err
	}
	return deltaResponse(d), nil
}

func (s *Service) AutoSlot(req protocol.AutoSlotRequest) (protocol.AutoSlotResponse, error) {
	res, err := planner.AutoSlot(s.ds, req.Race, req.Current)
	if err != nil {
		return protocol.AutoSlotResponse{}, err
	}
	out := protocol.AutoSlotResponse{
		Race:         res.Race.Key(),
		Current:      res.Current,
		MaxReachable: res.MaxReachable,
		Next:         res.Next,
		NextLabel:    slots.Label(res.Next),
		AtMax:        res.AtMax,
		Delta:        deltaResponse(res.Delta),
	}
	if res.MaxReachable > 0 {
		out.MaxLabel = slots.Label(res.MaxReachable)
	}
	return out, nil
}

func (s *Service) ParseLevels(req protocol.ParseLevelsRequest) (protocol.ParseLevelsResponse, error) {
	r, err := planner.ResolveRace(s.ds, req.Race)
	if err != nil {
		return protocol.ParseLevelsResponse{}, err
	}
	res := levelimport.Parse(r, req.Text)
	return protocol.ParseLevelsResponse{
		Race:    r.Key(),
		Current: res.Levels,
		Mode:    string(res.Mode),
		Matched: res.Matched,
	}, nil
}

// Do runs op with JSON params, validating them against the op's schema
// first. Used by the websocket channel.
func (s *Service) Do(op string, params json.RawMessage) (any, error) {
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}
	switch op {
	case protocol.OpMeta:
		return s.Meta(), nil
	case protocol.OpRaces:
		return s.Races(), nil
	case protocol.OpSlot:
		var req protocol.SlotRequest
		if err := protocol.DecodeValidated(protocol.SchemaSlot, params, &req); err != nil {
			return nil, err
		}
		return s.Slot(req)
	case protocol.OpFull:
		var req protocol.FullRequest
		if err := protocol.DecodeValidated(protocol.SchemaFull, params, &req); err != nil {
			return nil, err
		}
		return s.Full(req)
	case protocol.OpDelta:
		var req protocol.DeltaRequest
		if err := protocol.DecodeValidated(protocol.SchemaDelta, params, &req); err != nil {
			return nil, err
		}
		return s.Delta(req)
	case protocol.OpAutoSlot:
		var req protocol.AutoSlotRequest
		if err := protocol.DecodeValidated(protocol.SchemaAutoSlot, params, &req); err != nil {
			return nil, err
		}
		return s.AutoSlot(req)
	case protocol.OpParseLevels:
		var req protocol.ParseLevelsRequest
		if err := protocol.DecodeValidated(protocol.SchemaParseLevels, params, &req); err != nil {
			return nil, err
		}
		return s.ParseLevels(req)
	default:
		return nil, fmt.Errorf("%w: unknown op %q", protocol.ErrInvalidBody, op)
	}
}

func buildingInfos(bs []catalogs.Building) []protocol.BuildingInfo {
	out := make([]protocol.BuildingInfo, 0, len(bs))
	for i, b := range bs {
		out = append(out, protocol.BuildingInfo{
			Index:    i,
			Key:      b.Key,
			Icon:     b.Icon,
			Name:     b.Name,
			Category: planner.CategoryOf(i, b).String(),
		})
	}
	return out
}

func deltaResponse(d planner.Delta) protocol.DeltaResponse {
	out := protocol.DeltaResponse{
		Race:       d.Requirement.Race.Key(),
		Slot:       d.Requirement.Ref.Slot,
		Label:      d.Requirement.Ref.Label(),
		Population: d.Requirement.Population,
		Progress:   d.Progress,
		Complete:   d.Complete,
		Priority:   []protocol.PriorityEntry{},
	}
	for _, r := range d.Rows {
		out.Rows = append(out.Rows, protocol.DeltaRow{
			Index:    r.Index,
			Key:      r.Building.Key,
			Icon:     r.Building.Icon,
			Name:     r.Building.Name,
			Current:  r.Current,
			Required: r.Required,
			Missing:  r.Missing,
		})
	}
	for _, p := range d.Priority {
		out.Priority = append(out.Priority, protocol.PriorityEntry{
			Index:    p.Index,
			Key:      p.Building.Key,
			Name:     p.Building.Name,
			Missing:  p.Missing,
			Category: p.Category.String(),
		})
	}
	return out
}
