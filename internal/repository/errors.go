// Package repository implements data access over MySQL.  This file
// holds helpers reused across repositories; duplicate-key detection
// lets each repository surface its own "already exists" sentinel.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (error 1062), i.e. an insert rejected by a unique key.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
