package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
)

// seedCSV is the demo roster applied when seeding is enabled. Deterministic
// ids make the seed idempotent: re-running it fails the duplicate rows and
// leaves the existing records untouched.
const seedCSV = `email,password,role,lasid,first_name,last_name,nickname,date_of_birth
admin@cranston.edu,admin123,admin,,Ada,Admin,,
teacher@cranston.edu,teacher123,teacher,,Tom,Teacher,Mr. T,
student@cranston.edu,student123,student,1001,Sally,Student,Sal,2012-09-01
student2@cranston.edu,student123,student,1002,Sam,Student,,2011-04-15
`

// Seed loads the demo roster through the batch import path.
func Seed(ctx context.Context, repo RepositoryManager, logger Logger) error {
	handler := NewImportUsersHandler(repo)

	result, err := handler.Execute(ctx, ImportUsersMessage{
		CSV:              seedCSV,
		DeterministicIDs: true,
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to seed demo users")
	}

	if logger != nil {
		logger.Info("seeded demo users", "created", result.SuccessCount(), "skipped", result.ErrorCount())
	}

	return nil
}
