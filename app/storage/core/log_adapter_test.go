// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core_test

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cloudzero/signal-store/app/storage/core"
)

type MockWriter struct {
	Entries []map[string]interface{}
}

func NewMockWriter() *MockWriter {
	return &MockWriter{make([]map[string]interface{}, 0)}
}

func (m *MockWriter) Write(p []byte) (int, error) {
	entry := map[string]interface{}{}

	if err := json.Unmarshal(p, &entry); err != nil {
		panic(fmt.Sprintf("Failed to parse JSON %v: %s", p, err.Error()))
	}

	m.Entries = append(m.Entries, entry)

	return len(p), nil
}

func (m *MockWriter) Reset() {
	m.Entries = make([]map[string]interface{}, 0)
}

func Test_Logger_Sqlite(t *testing.T) {
	mogger := NewMockWriter()

	z := zerolog.New(mogger).Level(zerolog.DebugLevel)

	now := time.Now()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{NowFunc: func() time.Time { return now }, Logger: core.ZeroLogAdapter{}})
	if err != nil {
		t.Fatal(err)
	}

	db = db.WithContext(z.WithContext(context.Background()))

	type Record struct {
		ID, Body string
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		run        func() error
		sqlPattern string
		level      string
		errOk      bool
	}{
		{
			run:        func() error { return db.Create(&Record{ID: "7", Body: "id:7,"}).Error },
			sqlPattern: `INSERT INTO ` + "`records`" + ` .*VALUES \("7","id:7,"\)`,
			level:      "debug",
		},
		{
			run:        func() error { return db.Model(&Record{}).Find(&[]*Record{}).Error },
			sqlPattern: "SELECT \\* FROM `records`",
			level:      "debug",
		},
		{
			run:        func() error { return db.Where(&Record{ID: "missing"}).First(&Record{}).Error },
			sqlPattern: "SELECT \\* FROM `records` WHERE `records`\\.`id` = \"missing\"",
			level:      "debug",
			errOk:      true,
		},
		{
			run:        func() error { return db.Raw("THIS is,not REAL sql").Scan(&Record{}).Error },
			sqlPattern: "THIS is,not REAL sql",
			level:      "error",
			errOk:      true,
		},
	}

	for i, c := range cases {
		mogger.Reset()

		err := c.run()

		if err != nil && !c.errOk {
			t.Fatalf("Case %d: Unexpected error: %s (%T)", i, err, err)
		}

		entries := mogger.Entries

		if got, want := len(entries), 1; got != want {
			t.Errorf("Case %d: Logger logged %d items, want %d items", i, got, want)
			continue
		}

		actualSQL := entries[0]["sql"].(string)
		matched, err := regexp.MatchString(c.sqlPattern, actualSQL)
		if err != nil {
			t.Fatalf("Case %d: Invalid regex pattern %q: %v", i, c.sqlPattern, err)
		}
		if !matched {
			t.Errorf("Case %d: Logged sql %q does not match pattern %q", i, actualSQL, c.sqlPattern)
		}
		if got := entries[0][zerolog.LevelFieldName]; got != c.level {
			t.Errorf("Case %d: logged at level %v, want %s", i, got, c.level)
		}
	}
}
