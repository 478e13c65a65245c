package protocol

import "fmt"

// CmdID identifies the wire schema carried by a frame. Request and response
// ids are paired; notify ids have no request.
type CmdID uint16

// Player / account
const (
	CmdPlayerBegin           CmdID = 1000
	CmdPlayerLoginCsReq      CmdID = 1001
	CmdPlayerLoginScRsp      CmdID = 1002
	CmdPlayerGetTokenCsReq   CmdID = 1003
	CmdPlayerGetTokenScRsp   CmdID = 1004
	CmdPlayerHeartBeatCsReq  CmdID = 1005
	CmdPlayerHeartBeatScRsp  CmdID = 1006
	CmdPlayerKickOutScNotify CmdID = 1007
	CmdPlayerEnd             CmdID = 2000
)

// Lineup
const (
	CmdLineupBegin           CmdID = 2000
	CmdGetCurLineupDataCsReq CmdID = 2001
	CmdGetCurLineupDataScRsp CmdID = 2002
	CmdLineupEnd             CmdID = 3000
)

// Scene
const (
	CmdSceneBegin                 CmdID = 3000
	CmdGetCurSceneInfoCsReq       CmdID = 3001
	CmdGetCurSceneInfoScRsp       CmdID = 3002
	CmdEnterSceneCsReq            CmdID = 3003
	CmdEnterSceneScRsp            CmdID = 3004
	CmdEnterSceneByServerScNotify CmdID = 3005
	CmdLeaveSceneCsReq            CmdID = 3006
	CmdLeaveSceneScRsp            CmdID = 3007
	CmdSceneEnd                   CmdID = 4000
)

var cmdNames = map[CmdID]string{
	CmdPlayerLoginCsReq:           "PlayerLoginCsReq",
	CmdPlayerLoginScRsp:           "PlayerLoginScRsp",
	CmdPlayerGetTokenCsReq:        "PlayerGetTokenCsReq",
	CmdPlayerGetTokenScRsp:        "PlayerGetTokenScRsp",
	CmdPlayerHeartBeatCsReq:       "PlayerHeartBeatCsReq",
	CmdPlayerHeartBeatScRsp:       "PlayerHeartBeatScRsp",
	CmdPlayerKickOutScNotify:      "PlayerKickOutScNotify",
	CmdGetCurLineupDataCsReq:      "GetCurLineupDataCsReq",
	CmdGetCurLineupDataScRsp:      "GetCurLineupDataScRsp",
	CmdGetCurSceneInfoCsReq:       "GetCurSceneInfoCsReq",
	CmdGetCurSceneInfoScRsp:       "GetCurSceneInfoScRsp",
	CmdEnterSceneCsReq:            "EnterSceneCsReq",
	CmdEnterSceneScRsp:            "EnterSceneScRsp",
	CmdEnterSceneByServerScNotify: "EnterSceneByServerScNotify",
	CmdLeaveSceneCsReq:            "LeaveSceneCsReq",
	CmdLeaveSceneScRsp:            "LeaveSceneScRsp",
}

// rspOf pairs every request with its response.
var rspOf = map[CmdID]CmdID{
	CmdPlayerLoginCsReq:      CmdPlayerLoginScRsp,
	CmdPlayerGetTokenCsReq:   CmdPlayerGetTokenScRsp,
	CmdPlayerHeartBeatCsReq:  CmdPlayerHeartBeatScRsp,
	CmdGetCurLineupDataCsReq: CmdGetCurLineupDataScRsp,
	CmdGetCurSceneInfoCsReq:  CmdGetCurSceneInfoScRsp,
	CmdEnterSceneCsReq:       CmdEnterSceneScRsp,
	CmdLeaveSceneCsReq:       CmdLeaveSceneScRsp,
}

// String returns the schema name, or the numeric id for unknown commands.
func (c CmdID) String() string {
	if name, ok := cmdNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Cmd(%d)", uint16(c))
}

// Known reports whether the id is part of the catalogue.
func (c CmdID) Known() bool {
	_, ok := cmdNames[c]
	return ok
}

// ResponseOf returns the response id paired with a request id.
func ResponseOf(req CmdID) (CmdID, bool) {
	rsp, ok := rspOf[req]
	return rsp, ok
}

// Catalogue lists every known command id.
func Catalogue() []CmdID {
	ids := make([]CmdID, 0, len(cmdNames))
	for id := range cmdNames {
		ids = append(ids, id)
	}
	return ids
}
