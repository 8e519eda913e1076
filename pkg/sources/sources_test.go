package sources

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/kakeibu/configs"
)

func defaultTable(t *testing.T) *Table {
	t.Helper()
	table, err := Parse(configs.Sources)
	require.NoError(t, err)
	return table
}

func TestParse_DefaultTableKeepsOrder(t *testing.T) {
	table := defaultTable(t)

	var ids []string
	for _, d := range table.Descriptors {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"mufg", "smbc", "sbi", "rakuten_card", "paypay", "smbc_card", "yucho"}, ids)

	mufg, ok := table.Get("mufg")
	require.True(t, ok)
	assert.Equal(t, "三菱UFJ銀行", mufg.Name)
	assert.Equal(t, SplitAmount, mufg.Layout())
	assert.Equal(t, "1234567", mufg.AccountNumber("1234567_20240531.csv"))

	rakuten, _ := table.Get("rakuten_card")
	assert.Equal(t, SingleAmount, rakuten.Layout())
	assert.Equal(t, HintExpense, rakuten.Columns.TypeHint)

	yucho, _ := table.Get("yucho")
	assert.Equal(t, FormatXLS, yucho.Format)
	assert.Equal(t, "20060102", yucho.DateLayouts()[0])
}

func TestParse_RejectsMalformedDescriptors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing date",
			yaml: "sources:\n  a:\n    columns: {description: 1, amount: 2}\n",
			want: "columns.date is required",
		},
		{
			name: "both layouts",
			yaml: "sources:\n  a:\n    columns: {date: 0, description: 1, amount: 2, withdrawal: 3, deposit: 4}\n",
			want: "cannot be combined",
		},
		{
			name: "half split layout",
			yaml: "sources:\n  a:\n    columns: {date: 0, description: 1, withdrawal: 3}\n",
			want: "must be set together",
		},
		{
			name: "no amount",
			yaml: "sources:\n  a:\n    columns: {date: 0, description: 1}\n",
			want: "either columns.amount",
		},
		{
			name: "bad hint",
			yaml: "sources:\n  a:\n    columns: {date: 0, description: 1, amount: 2, typeHint: refund}\n",
			want: "unknown typeHint",
		},
		{
			name: "bad encoding",
			yaml: "sources:\n  a:\n    encoding: latin1\n    columns: {date: 0, description: 1, amount: 2}\n",
			want: "unknown encoding",
		},
		{
			name: "bad date format",
			yaml: "sources:\n  a:\n    dateFormat: DD/MM/YYYY\n    columns: {date: 0, description: 1, amount: 2}\n",
			want: "unknown dateFormat",
		},
		{
			name: "bad glob",
			yaml: "sources:\n  a:\n    filenamePatterns: ['[a-']\n    columns: {date: 0, description: 1, amount: 2}\n",
			want: "filename pattern",
		},
		{
			name: "bad rule regex",
			yaml: "sources:\n  a:\n    columns: {date: 0, description: 1, amount: 2}\ndetection:\n  a:\n    fileNamePattern: '('\n",
			want: "detection rule",
		},
		{
			name: "empty",
			yaml: "sources: {}\n",
			want: "no descriptors",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClassifier_MatchFilename(t *testing.T) {
	c := NewClassifier(defaultTable(t))

	tests := map[string]string{
		"1234567_MUFG_202405.csv":           "mufg",
		"/tmp/upload/enavi202405(1234).csv": "rakuten_card",
		"Transactions_20240501.csv":         "paypay",
		"202405.csv":                        "smbc_card",
		"yucho_2024.xls":                    "yucho",
	}
	for name, want := range tests {
		d, ok := c.MatchFilename(name)
		require.True(t, ok, name)
		assert.Equal(t, want, d.ID, name)
	}

	_, ok := c.MatchFilename("statement.pdf")
	assert.False(t, ok)
}

func TestClassifier_Confirm(t *testing.T) {
	table := defaultTable(t)
	c := NewClassifier(table)
	paypayHeader := [][]string{{"取引日", "出金金額（円）", "入金金額（円）", "海外出金金額", "通貨", "変換レート（円）", "利用国", "取引内容", "取引先", "取引方法", "支払い区分", "利用者", "取引番号"}}

	// header overrides an ambiguous file name
	d, err := c.Confirm(nil, paypayHeader, "download.csv")
	require.NoError(t, err)
	assert.Equal(t, "paypay", d.ID)

	// the filename match stands when no rule fires
	pre, _ := table.Get("smbc_card")
	d, err = c.Confirm(pre, [][]string{{"山田 太郎 様", "1234-****-****-****", "ＶＩＳＡ"}}, "202405.csv")
	require.NoError(t, err)
	assert.Equal(t, "smbc_card", d.ID)

	// a rule matches on the file name alone
	d, err = c.Confirm(nil, nil, "mufg_export.csv")
	require.NoError(t, err)
	assert.Equal(t, "mufg", d.ID)

	// header patterns must all be present
	_, err = c.Confirm(nil, [][]string{{"取引日", "取引先"}}, "download.csv")
	assert.True(t, errors.Is(err, ErrUndetectable))
}

func TestClassifier_ConfigMissing(t *testing.T) {
	table, err := Parse([]byte(`
sources:
  a:
    filenamePatterns: ["a*.csv"]
    columns: {date: 0, description: 1, amount: 2}
detection:
  ghost:
    headerPatterns: [幽霊]
`))
	require.NoError(t, err)

	_, err = NewClassifier(table).Confirm(nil, [][]string{{"幽霊"}}, "x.csv")
	assert.ErrorIs(t, err, ErrConfigMissing)
}
