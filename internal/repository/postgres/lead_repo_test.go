package postgres

import (
	"strings"
	"testing"
	"time"

	"dealer-crm-service/internal/domain/lead"

	"github.com/stretchr/testify/assert"
)

func TestLeadArgsMatchColumns(t *testing.T) {
	l := lead.Lead{SerialNumber: "010", CreatedDateTime: time.Now(), LeadStatus: lead.StatusActive}
	cols := leadColumnNames()

	assert.Len(t, leadArgs(l), len(cols))
	assert.Equal(t, "serial_number", cols[0])
	assert.Equal(t, "created_at", cols[1])
	for _, c := range cols {
		assert.NotContains(t, c, " ")
		assert.Contains(t, schema, "\t"+c+" ", "column %s missing from schema", c)
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1, $2, $3", placeholders(1, 3))
	assert.Equal(t, "$4", placeholders(4, 1))
	assert.Equal(t, 32, strings.Count(placeholders(1, len(leadColumnNames())), "$"))
}
