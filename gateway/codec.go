// Package gateway implements the persistence gateway on BadgerDB:
// row-level CRUD over the message relation, profile lookups, and
// change-event emission after each committed mutation.
package gateway

import (
	"swapchat/domain"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Stored rows use CBOR Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, smallest integer encoding. Same logical row always
// produces identical bytes, which keeps value comparisons meaningful
// when debugging with the inspect tool.
var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("gateway: CBOR encoder initialization failed: " + err.Error())
	}
	// Unknown fields are ignored for forward compatibility.
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("gateway: CBOR decoder initialization failed: " + err.Error())
	}
}

type editRecordRow struct {
	Text     string `cbor:"text"`
	EditedAt int64  `cbor:"edited_at"`
}

// messageRow is the disk shape of a message. Timestamps are stored as
// UnixNano so the encoding stays byte-stable across time zones.
type messageRow struct {
	ID          string          `cbor:"id"`
	SenderID    string          `cbor:"sender_id"`
	ReceiverID  string          `cbor:"receiver_id"`
	Text        string          `cbor:"text"`
	CreatedAt   int64           `cbor:"created_at"`
	Read        bool            `cbor:"read"`
	EditedAt    *int64          `cbor:"edited_at"`
	EditHistory []editRecordRow `cbor:"edit_history"`
}

func fromMessage(m domain.Message) messageRow {
	row := messageRow{
		ID:         m.ID.String(),
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt.UnixNano(),
		Read:       m.Read,
	}
	if m.EditedAt != nil {
		ns := m.EditedAt.UnixNano()
		row.EditedAt = &ns
	}
	for _, rec := range m.EditHistory {
		row.EditHistory = append(row.EditHistory, editRecordRow{
			Text:     rec.Text,
			EditedAt: rec.EditedAt.UnixNano(),
		})
	}
	return row
}

func toMessage(row messageRow) (domain.Message, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return domain.Message{}, err
	}
	m := domain.Message{
		ID:         id,
		SenderID:   row.SenderID,
		ReceiverID: row.ReceiverID,
		Text:       row.Text,
		CreatedAt:  time.Unix(0, row.CreatedAt).UTC(),
		Read:       row.Read,
	}
	if row.EditedAt != nil {
		at := time.Unix(0, *row.EditedAt).UTC()
		m.EditedAt = &at
	}
	for _, rec := range row.EditHistory {
		m.EditHistory = append(m.EditHistory, domain.EditRecord{
			Text:     rec.Text,
			EditedAt: time.Unix(0, rec.EditedAt).UTC(),
		})
	}
	return m, nil
}

func encodeMessage(m domain.Message) ([]byte, error) {
	return encMode.Marshal(fromMessage(m))
}

// DecodeMessage turns a stored value back into a domain message.
// Exported for the inspect tool.
func DecodeMessage(data []byte) (domain.Message, error) {
	var row messageRow
	if err := decMode.Unmarshal(data, &row); err != nil {
		return domain.Message{}, err
	}
	return toMessage(row)
}

type profileRow struct {
	ID   string `cbor:"id"`
	Name string `cbor:"name"`
}

func encodeProfile(p domain.Profile) ([]byte, error) {
	return encMode.Marshal(profileRow{ID: p.ID, Name: p.Name})
}

func decodeProfile(data []byte) (domain.Profile, error) {
	var row profileRow
	if err := decMode.Unmarshal(data, &row); err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{ID: row.ID, Name: row.Name}, nil
}
