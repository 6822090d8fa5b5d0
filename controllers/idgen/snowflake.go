package idgen

import (
	"fmt"
	"log"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node

func Init() {
	var err error
	node, err = snowflake.NewNode(1)
	if err != nil {
		log.Fatalf("Failed to init Snowflake: %v", err)
	}
}

func GenerateID() int64 {
	return node.Generate().Int64()
}

// TrackingNo builds a warehouse tracking number for manifest rows that
// arrive without one. The GW prefix marks generated numbers so they can
// never collide with supplier references.
func TrackingNo() string {
	return fmt.Sprintf("GW%d", node.Generate().Int64())
}
