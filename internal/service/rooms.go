package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
)

type RoomService struct {
	st store.Store
}

func (s *RoomService) List(ctx context.Context) ([]model.Room, error) {
	return s.st.Rooms().List(ctx)
}

// AddOccupant assigns a user to an office. Other room kinds have no
// occupants.
func (s *RoomService) AddOccupant(ctx context.Context, roomID, userID uint64) (model.Room, error) {
	var room model.Room
	err := s.st.InTx(ctx, func(tx store.Store) error {
		var err error
		if room, err = tx.Rooms().GetByID(ctx, roomID); err != nil {
			return err
		}
		switch room.Kind {
		case model.RoomOffice:
		case model.RoomLecture, model.RoomLab, model.RoomStudy:
			return errors.Wrapf(apperr.ErrInvalidArgument, "%s rooms have no occupants", room.Kind)
		}
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			return err
		}
		if err := tx.Rooms().AddOccupant(ctx, roomID, userID); err != nil {
			return err
		}
		room, err = tx.Rooms().GetByID(ctx, roomID)
		return err
	})
	return room, err
}
