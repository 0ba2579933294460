package catalog

import "strings"

// Kind is the closed enumeration of node kinds the builders know how to emit.
// Type strings outside the catalog map to KindUnrecognized.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindManualTrigger
	KindWebhook
	KindSchedule
	KindHTTPRequest
	KindCode
	KindSet
	KindIf
	KindSwitch
	KindMerge
	KindEmail
	KindSlack
	KindDatabase
	KindSpreadsheet
	KindReadFile
	KindWriteFile
	KindRespond
	KindAI
	KindWait
)

var kindNames = map[Kind]string{
	KindUnrecognized:  "unrecognized",
	KindManualTrigger: "manual-trigger",
	KindWebhook:       "webhook",
	KindSchedule:      "schedule",
	KindHTTPRequest:   "http-request",
	KindCode:          "code",
	KindSet:           "set",
	KindIf:            "if",
	KindSwitch:        "switch",
	KindMerge:         "merge",
	KindEmail:         "email",
	KindSlack:         "slack",
	KindDatabase:      "database",
	KindSpreadsheet:   "spreadsheet",
	KindReadFile:      "read-file",
	KindWriteFile:     "write-file",
	KindRespond:       "respond",
	KindAI:            "ai",
	KindWait:          "wait",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unrecognized"
}

type Category string

const (
	CategoryTrigger      Category = "trigger"
	CategoryAction       Category = "action"
	CategoryLogic        Category = "logic"
	CategoryTransform    Category = "transform"
	CategoryPersistence  Category = "persistence"
	CategoryNotification Category = "notification"
	CategoryFile         Category = "file"
	CategoryResponse     Category = "response"
	CategoryAI           Category = "ai"
	CategoryUnknown      Category = "unknown"
)

// IsTrigger reports whether a kind starts a workflow.
func (k Kind) IsTrigger() bool {
	switch k {
	case KindManualTrigger, KindWebhook, KindSchedule:
		return true
	case KindUnrecognized, KindHTTPRequest, KindCode, KindSet, KindIf, KindSwitch, KindMerge,
		KindEmail, KindSlack, KindDatabase, KindSpreadsheet, KindReadFile, KindWriteFile,
		KindRespond, KindAI, KindWait:
		return false
	}
	return false
}

// guessTrigger classifies type strings outside the catalog. Platform trigger
// node types conventionally end in "Trigger".
func guessTrigger(nodeType string) bool {
	t := strings.ToLower(nodeType)
	return strings.HasSuffix(t, "trigger") || strings.HasSuffix(t, ".webhook")
}
