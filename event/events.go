package event

import (
	"bidhub/idgen"
	"bidhub/session"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	eventIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	EventPersistCreateFunc = PersistEvent
)

// CreateEvent records ev in the audit log within tx.
func CreateEvent(ev *BidEvent, identity *session.Identity, timestamp types.Timestamp, tx *gorm.DB) (*EventRecord, error) {
	record := EventRecord{
		ID:         idgen.NextID(eventIdWorker),
		Kind:       ev.Kind,
		BidID:      ev.Bid.ID,
		WorkUnitID: ev.WorkUnit.ID,
		Cascade:    ev.Cascade,
		Timestamp:  timestamp,
	}
	switch ev.Kind {
	case KindBidStatusChanged:
		record.OldValue = string(ev.OldStatus)
		record.NewValue = string(ev.Bid.Status)
	case KindFilesUploaded:
		record.OldValue = strconv.FormatBool(false)
		record.NewValue = strconv.FormatBool(ev.Bid.FilesUploaded)
	}
	if identity != nil {
		record.CreatorID = identity.ID
		record.CreatorName = identity.Name
	}

	if err := EventPersistCreateFunc(&record, tx); err != nil {
		return nil, err
	}
	return &record, nil
}

func PersistEvent(record *EventRecord, db *gorm.DB) error {
	return db.Create(record).Error
}
