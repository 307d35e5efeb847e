// 绿信比结果校验：只读地检查求解结果是否满足约束，并给出提示性发现
package validate

import (
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/greensplit/entity"
)

// Check 校验求解结果
// 功能：重新检查周期约束、通行量上界、绿灯上下界，并提示需求为正但只拿到最小绿灯的相位
// 说明：每个相位的各项检查相互独立，同一相位可以同时产生多条发现
// 参数：sol-求解结果，cycle-周期长度C，saturation-饱和流率S
// 返回：发现列表，为空表示无问题；不修改sol
// 说明：比较均带entity.Tolerance容差，缺失的相位键按0处理
func Check(sol *entity.Solution, cycle, saturation float64) []entity.Finding {
	if sol == nil {
		return nil
	}
	findings := make([]entity.Finding, 0)
	tol := entity.Tolerance

	if total := sol.TotalGreen(); math.Abs(total-cycle) > tol {
		findings = append(findings, entity.Finding{
			Kind:     entity.FindingTotalGreenMismatch,
			Severity: entity.SeverityError,
			Value:    total,
			Limit:    cycle,
			Message:  fmt.Sprintf("total green %.4f != cycle length %.4f", total, cycle),
		})
	}

	for _, p := range sol.Phases {
		green, served := sol.Green[p], sol.Served[p]
		d := float64(sol.Demand.Get(p))

		if served > d+tol {
			findings = append(findings, phaseFinding(entity.FindingServedExceedsDemand, entity.SeverityError, p, served, d,
				fmt.Sprintf("served %.4f exceeds demand %.0f", served, d)))
		}
		if capacity := saturation * green; served > capacity+tol {
			findings = append(findings, phaseFinding(entity.FindingServedExceedsSaturation, entity.SeverityError, p, served, capacity,
				fmt.Sprintf("served %.4f exceeds saturation capacity %.4f", served, capacity)))
		}
		if green < entity.MinGreen-tol {
			findings = append(findings, phaseFinding(entity.FindingGreenOutOfBounds, entity.SeverityError, p, green, entity.MinGreen,
				fmt.Sprintf("green %.4f below minimum %.0f", green, entity.MinGreen)))
		}
		if green > entity.MaxGreen+tol {
			findings = append(findings, phaseFinding(entity.FindingGreenOutOfBounds, entity.SeverityError, p, green, entity.MaxGreen,
				fmt.Sprintf("green %.4f above maximum %.0f", green, entity.MaxGreen)))
		}
		if d > 0 && green <= entity.MinGreen+tol {
			findings = append(findings, phaseFinding(entity.FindingStarvedPhase, entity.SeverityWarning, p, green, entity.MinGreen,
				fmt.Sprintf("demand %.0f but only minimum green %.4f", d, green)))
		}
	}
	if len(findings) > 0 {
		log.Debugf("%d findings for %d phases", len(findings), len(sol.Phases))
	}
	return findings
}

func phaseFinding(kind entity.FindingKind, severity entity.Severity, phase string, value, limit float64, msg string) entity.Finding {
	return entity.Finding{Kind: kind, Severity: severity, Phase: phase, Value: value, Limit: limit, Message: msg}
}

// HasErrors 是否存在error级别的发现
func HasErrors(findings []entity.Finding) bool {
	for _, f := range findings {
		if f.Severity == entity.SeverityError {
			return true
		}
	}
	return false
}
