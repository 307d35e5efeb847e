package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsinghua-fib-lab/greensplit/entity"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v2"
)

// Encode 按格式编码结果，format为json、yaml或msgpack
func Encode(res *Result, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(res, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(res)
	case "msgpack", "mp":
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(res); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: unknown output format %q", entity.ErrConfiguration, format)
	}
}

// WriteResult 按扩展名选择格式把结果写入文件
func WriteResult(path string, res *Result) error {
	data, err := Encode(res, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	log.Infof("write result to %s", path)
	return nil
}

// Report 输出可读的结果报告，包括每个相位的分配与校验发现
func Report(w io.Writer, res *Result) error {
	sol := res.Solution
	var b strings.Builder
	window := res.Window
	if res.WindowSeconds > 0 {
		window = fmt.Sprintf("%s (%.0fs)", res.Window, res.WindowSeconds)
	}
	fmt.Fprintf(&b, "Intersection %s, cycle %.1fs, saturation %.3f veh/s, window %s, %d arrivals\n",
		res.IntersectionID, res.CycleLength, res.SaturationRate, window, res.Arrivals)
	fmt.Fprintf(&b, "%-6s %-24s %8s %8s %8s %8s\n", "phase", "road", "demand", "green", "served", "s*g")
	for _, p := range sol.Phases {
		green := sol.Green[p]
		fmt.Fprintf(&b, "%-6s %-24s %8d %8.2f %8.2f %8.2f\n",
			p, res.Assignment.PhaseToRoad[p], sol.Demand.Get(p), green, sol.Served[p], res.SaturationRate*green)
	}
	fmt.Fprintf(&b, "total green %.2f / %.2f, objective %.2f\n", sol.TotalGreen(), res.CycleLength, sol.Objective)
	if len(res.Findings) == 0 {
		b.WriteString("checks: all passed\n")
	} else {
		for _, f := range res.Findings {
			fmt.Fprintf(&b, "check: %s\n", f)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
