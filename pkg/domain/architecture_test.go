package domain

import (
	"testing"

	"usergate/testutil"
)

// TestDomainDoesNotImportInternal keeps the domain layer free of any internal
// implementation packages so infrastructure can depend on it without cycles.
func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "pkg/domain must stay independent of internal packages")
}
