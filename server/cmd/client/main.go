// Command client is a debug client that logs in over TCP, enters a scene
// and prints the scene snapshot the server reports.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/phuhao00/rpgserver/server/internal/protocol"
)

func main() {
	host := flag.String("host", "localhost", "Server host")
	port := flag.Int("port", 23301, "Server TCP port")
	uid := flag.Uint("uid", 1, "Player uid")
	token := flag.String("token", "fixed_dummy_secret_token_123", "Session token")
	entry := flag.Uint("entry", 2010101, "Entry id to enter")
	flag.Parse()

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(*host, strconv.Itoa(*port)), 5*time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to server: %v", err)
	}
	defer conn.Close()
	fmt.Printf("Connected to %s\n", conn.RemoteAddr())

	c := &client{conn: conn}
	if err := c.run(uint32(*uid), *token, uint32(*entry)); err != nil {
		fmt.Fprintf(os.Stderr, "client: %v\n", err)
		os.Exit(1)
	}
}

type client struct {
	conn net.Conn
}

func (c *client) run(uid uint32, token string, entry uint32) error {
	var tokenRsp protocol.PlayerGetTokenScRsp
	if err := c.call(protocol.CmdPlayerGetTokenCsReq, &protocol.PlayerGetTokenCsReq{UID: uid, Token: token}, &tokenRsp); err != nil {
		return err
	}
	if tokenRsp.Retcode != protocol.RetSucc {
		return fmt.Errorf("get token: retcode %d %s", tokenRsp.Retcode, tokenRsp.Msg)
	}

	var loginRsp protocol.PlayerLoginScRsp
	if err := c.call(protocol.CmdPlayerLoginCsReq, &protocol.PlayerLoginCsReq{LoginRandom: uint64(time.Now().UnixNano())}, &loginRsp); err != nil {
		return err
	}
	if loginRsp.Retcode != protocol.RetSucc {
		return fmt.Errorf("login: retcode %d", loginRsp.Retcode)
	}
	if loginRsp.BasicInfo != nil {
		fmt.Printf("Logged in as %s (level %d)\n", loginRsp.BasicInfo.Nickname, loginRsp.BasicInfo.Level)
	}

	var enterRsp protocol.EnterSceneScRsp
	if err := c.call(protocol.CmdEnterSceneCsReq, &protocol.EnterSceneCsReq{EntryID: entry}, &enterRsp); err != nil {
		return err
	}
	if enterRsp.Retcode != protocol.RetSucc {
		return fmt.Errorf("enter scene %d: retcode %d", entry, enterRsp.Retcode)
	}
	var notify protocol.EnterSceneByServerScNotify
	if err := c.expect(protocol.CmdEnterSceneByServerScNotify, &notify); err != nil {
		return err
	}

	var sceneRsp protocol.GetCurSceneInfoScRsp
	if err := c.call(protocol.CmdGetCurSceneInfoCsReq, &protocol.GetCurSceneInfoCsReq{}, &sceneRsp); err != nil {
		return err
	}
	printScene(sceneRsp.Scene)
	return nil
}

// call sends req and reads the response registered for its command.
func (c *client) call(cmd protocol.CmdID, req, rsp protocol.Message) error {
	frame, err := protocol.EncodeFrame(cmd, protocol.Marshal(req))
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	rspCmd, ok := protocol.ResponseOf(cmd)
	if !ok {
		return fmt.Errorf("%s has no response", cmd)
	}
	return c.expect(rspCmd, rsp)
}

func (c *client) expect(cmd protocol.CmdID, msg protocol.Message) error {
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	pkt, err := protocol.ReadFrame(c.conn)
	if err != nil {
		return fmt.Errorf("read %s: %w", cmd, err)
	}
	if pkt.CmdID != cmd {
		return fmt.Errorf("expected %s, got %s", cmd, pkt.CmdID)
	}
	return protocol.Unmarshal(pkt.Body, msg)
}

func printScene(s *protocol.SceneInfo) {
	if s == nil {
		fmt.Println("No scene")
		return
	}
	fmt.Printf("Scene plane=%d floor=%d entry=%d mode=%d\n", s.PlaneID, s.FloorID, s.EntryID, s.GameModeType)
	for _, g := range s.EntityGroupList {
		fmt.Printf("  group %d (state %d)\n", g.GroupID, g.State)
		for _, e := range g.EntityList {
			switch {
			case e.Actor != nil:
				fmt.Printf("    entity %d: avatar %d\n", e.EntityID, e.Actor.BaseAvatarID)
			case e.Prop != nil:
				fmt.Printf("    entity %d: prop %d (inst %d)\n", e.EntityID, e.Prop.PropID, e.InstID)
			}
		}
	}
}
