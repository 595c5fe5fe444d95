package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"chess-engine/engine"
	"chess-engine/nnue"
)

const startposFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func main() {
	uciLoop()
}

func uciLoop() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1<<16), 1<<20)

	logger := log.New(os.Stderr, "", 0)
	net := loadDefaultNetwork(logger)
	tt := &engine.TransTable{}
	tt.Resize(64 << 20)

	pos := engine.NewPositionFromFEN(startposFEN)
	coord := &engine.Coordinator{
		Param: engine.SearchParam{
			TT:         tt,
			NumThreads: 1,
			NumPvLines: 1,
			Evaluator:  &engine.Evaluator{Network: net},
		},
		Logger: logger,
	}
	coord.OnInfo = func(l engine.InfoLine) { fmt.Println(formatInfo(&pos, l)) }

	if book, err := engine.OpenBookStore("analysis.book"); err == nil {
		coord.Book = book
		defer book.Close()
	} else {
		coord.Logger.Printf("analysis cache disabled: %v", err)
	}

	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			fmt.Println("id name chess-engine")
			fmt.Println("id author module")
			fmt.Println("option name Hash type spin default 64 min 1 max 4096")
			fmt.Println("option name Threads type spin default 1 min 1 max 64")
			fmt.Println("option name MultiPV type spin default 1 min 1 max 8")
			fmt.Println("uciok")
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			pos = engine.NewPositionFromFEN(startposFEN)
			tt.Clear()
		case "quit":
			return
		case "stop":
			coord.Param.Stop.Store(true)
		case "setoption":
			handleSetOption(line, coord, tt)
		case "position":
			pos = handlePosition(line)
		case "go":
			handleGo(line, &pos, coord)
		default:
			fmt.Println("info string unknown command:", tokens[0])
		}
	}
}

// loadDefaultNetwork loads the packed network. On failure it logs the
// LoadFailure and returns nil, which leaves the evaluator hand-crafted-only.
func loadDefaultNetwork(logger *log.Logger) *nnue.Network {
	const path = "default.nnue"
	net, err := nnue.LoadWeights(path)
	if err != nil {
		logger.Printf("hand-crafted evaluation only: %v", &engine.LoadFailure{Path: path, Err: err})
		return nil
	}
	return net
}

func handleSetOption(line string, coord *engine.Coordinator, tt *engine.TransTable) {
	s := bufio.NewScanner(strings.NewReader(line))
	s.Split(bufio.ScanWords)
	s.Scan() // "setoption"
	var name, value string
	for s.Scan() {
		switch strings.ToLower(s.Text()) {
		case "name":
			if s.Scan() {
				name = strings.ToLower(s.Text())
			}
		case "value":
			if s.Scan() {
				value = s.Text()
			}
		}
	}
	switch name {
	case "hash":
		if mb, err := strconv.Atoi(value); err == nil {
			tt.Resize(uint64(mb) << 20)
		}
	case "threads":
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			coord.Param.NumThreads = n
		}
	case "multipv":
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			coord.Param.NumPvLines = n
		}
	}
}

func handlePosition(line string) engine.Position {
	s := bufio.NewScanner(strings.NewReader(line))
	s.Split(bufio.ScanWords)
	s.Scan() // "position"
	if !s.Scan() {
		return engine.NewPositionFromFEN(startposFEN)
	}

	var pos engine.Position
	switch strings.ToLower(s.Text()) {
	case "startpos":
		pos = engine.NewPositionFromFEN(startposFEN)
		s.Scan() // advance past "startpos", land on "moves" or EOF
	case "fen":
		var fenParts []string
		for s.Scan() && strings.ToLower(s.Text()) != "moves" {
			fenParts = append(fenParts, s.Text())
		}
		pos = engine.NewPositionFromFEN(strings.Join(fenParts, " "))
	default:
		fmt.Println("info string invalid position subcommand")
		return engine.NewPositionFromFEN(startposFEN)
	}

	if strings.ToLower(s.Text()) != "moves" {
		return pos
	}
	for s.Scan() {
		moveStr := strings.ToLower(s.Text())
		found := false
		for _, m := range pos.GenerateMoves(engine.FilterAll) {
			if strings.ToLower(pos.MoveToString(m)) == moveStr {
				pos.DoMove(m)
				found = true
				break
			}
		}
		if !found {
			fmt.Println("info string move", moveStr, "not found for position", pos.ToFEN())
		}
	}
	return pos
}

func handleGo(line string, pos *engine.Position, coord *engine.Coordinator) {
	s := bufio.NewScanner(strings.NewReader(line))
	s.Split(bufio.ScanWords)
	s.Scan() // "go"

	var limits engine.SearchLimits
	for s.Scan() {
		switch strings.ToLower(s.Text()) {
		case "infinite":
			limits.Infinite = true
		case "depth":
			if s.Scan() {
				limits.Depth, _ = strconv.Atoi(s.Text())
			}
		case "movetime":
			if s.Scan() {
				ms, _ := strconv.Atoi(s.Text())
				limits.MoveTime = time.Duration(ms) * time.Millisecond
			}
		case "wtime":
			if s.Scan() {
				ms, _ := strconv.Atoi(s.Text())
				limits.WhiteTime = time.Duration(ms) * time.Millisecond
			}
		case "btime":
			if s.Scan() {
				ms, _ := strconv.Atoi(s.Text())
				limits.BlackTime = time.Duration(ms) * time.Millisecond
			}
		case "winc":
			if s.Scan() {
				ms, _ := strconv.Atoi(s.Text())
				limits.WhiteIncrement = time.Duration(ms) * time.Millisecond
			}
		case "binc":
			if s.Scan() {
				ms, _ := strconv.Atoi(s.Text())
				limits.BlackIncrement = time.Duration(ms) * time.Millisecond
			}
		case "movestogo":
			if s.Scan() {
				limits.MovesToGo, _ = strconv.Atoi(s.Text())
			}
		default:
			fmt.Println("info string unknown go subcommand", s.Text())
		}
	}
	limits.MoveOverhead = 30 * time.Millisecond

	coord.Param.Stop.Store(false)
	result, err := coord.DoSearch(*pos, limits)
	if err != nil {
		fmt.Println("info string search error:", err)
		fmt.Println("bestmove (none)")
		return
	}
	if len(result.Lines) == 0 || len(result.Lines[0].Moves) == 0 {
		fmt.Println("bestmove (none)")
		return
	}
	best := result.Lines[0].Moves[0]
	if result.Ponder != engine.NullMove {
		fmt.Printf("bestmove %s ponder %s\n", pos.MoveToString(best), pos.MoveToString(result.Ponder))
	} else {
		fmt.Printf("bestmove %s\n", pos.MoveToString(best))
	}
}

func formatInfo(pos *engine.Position, l engine.InfoLine) string {
	pv := make([]string, len(l.PV))
	for i, m := range l.PV {
		pv[i] = pos.MoveToString(m)
	}
	return fmt.Sprintf("depth %d score cp %d nodes %d time %.0f multipv %d pv %s",
		l.Depth, l.Score, l.Nodes, l.Elapsed*1000, l.PVIndex+1, strings.Join(pv, " "))
}
