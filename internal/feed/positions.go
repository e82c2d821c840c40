package feed

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/rickgao/rail-data/internal/model"
)

// Child element names carried by every vehicle element.
const (
	elemTrainCode = "TrainCode"
	elemStatus    = "TrainStatus"
	elemLatitude  = "TrainLatitude"
	elemLongitude = "TrainLongitude"
	elemDirection = "Direction"
)

// FetchPositions performs one poll: it captures the poll time, sends one GET and
// parses the vehicles in the response.
func (c *Client) FetchPositions(ctx context.Context) (model.Snapshot, error) {
	polledAt := c.now()
	c.logger.Debug("retrieving trains", "url", c.url, "polled_at", polledAt)

	resp, err := c.http.R().SetContext(ctx).Get(c.url)
	if err != nil {
		return model.Snapshot{}, &TransportError{URL: c.url, Err: err}
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return model.Snapshot{}, &TransportError{
			URL:        c.url,
			StatusCode: code,
			Err:        fmt.Errorf("unexpected status %q", resp.Status()),
		}
	}

	records, err := ParsePositions(resp.Body(), c.namespace)
	if err != nil {
		return model.Snapshot{}, err
	}

	snap := model.NewSnapshot(polledAt, records)
	c.logger.Debug("retrieved trains", "count", len(records), "snapshot_id", snap.ID)
	return snap, nil
}

// xmlNode captures an arbitrary element tree.
type xmlNode struct {
	XMLName  xml.Name
	Text     string    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

// child returns the text of the first child named local in namespace ns.
func (n *xmlNode) child(ns, local string) (string, bool) {
	for _, c := range n.Children {
		if c.XMLName.Space == ns && c.XMLName.Local == local {
			return c.Text, true
		}
	}
	return "", false
}

// ParsePositions decodes a getCurrentTrainsXML payload. Every child of the root
// is a vehicle and must carry all five fields in namespace ns.
func ParsePositions(body []byte, ns string) ([]model.PositionRecord, error) {
	var root xmlNode
	if err := xml.Unmarshal(body, &root); err != nil {
		return nil, &ParseError{Index: -1, Err: fmt.Errorf("decode xml: %w", err)}
	}

	records := make([]model.PositionRecord, 0, len(root.Children))
	for i := range root.Children {
		r, err := parseVehicle(&root.Children[i], ns, i)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func parseVehicle(v *xmlNode, ns string, index int) (model.PositionRecord, error) {
	code, hasCode := v.child(ns, elemTrainCode)
	if !hasCode {
		return model.PositionRecord{}, &ParseError{Index: index, Missing: elemTrainCode}
	}

	r := model.PositionRecord{TrainCode: code}
	fields := []struct {
		name string
		dst  *string
	}{
		{elemStatus, &r.Status},
		{elemLatitude, &r.Latitude},
		{elemLongitude, &r.Longitude},
		{elemDirection, &r.Direction},
	}
	for _, f := range fields {
		text, ok := v.child(ns, f.name)
		if !ok {
			return model.PositionRecord{}, &ParseError{Index: index, Code: code, Missing: f.name}
		}
		*f.dst = text
	}
	return r, nil
}
