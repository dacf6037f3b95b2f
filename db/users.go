package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cyverse-de/quiet-hours/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

// GetUserByID looks up the email address of a user in the authentication schema. A nil user is returned
// if the user doesn't exist or has no email address on file.
func GetUserByID(ctx context.Context, db DatabaseAccessor, userID string) (*model.User, error) {
	wrapMsg := fmt.Sprintf("unable to look up user `%s`", userID)

	// Build the query.
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("id::text", "email").
		From("auth.users").
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	var id string
	var email sql.NullString
	err = db.QueryRowContext(ctx, query, args...).Scan(&id, &email)

	// A missing user isn't an error as far as callers are concerned.
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	if !email.Valid || email.String == "" {
		return nil, nil
	}

	return &model.User{ID: id, Email: email.String}, nil
}
