package input

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tsinghua-fib-lab/greensplit/entity"
	"github.com/tsinghua-fib-lab/greensplit/utils/config"
	"go.mongodb.org/mongo-driver/mongo"
)

// Input 输入数据
// 功能：存储一次优化所需的车流与路网
// 说明：每次运行重新加载，不做跨运行缓存
type Input struct {
	Flows   []entity.Flow
	Roadnet *entity.Roadnet
}

// Load 加载输入数据
// 功能：根据配置从文件或MongoDB加载车流与路网
// 参数：ctx-上下文，in-输入配置
// 返回：输入数据；文件缺失、格式错误、数据库不可达时返回ErrConfiguration
// 算法说明：
// 1. 若任一数据源使用MongoDB，则先建立连接，结束后断开
// 2. 车流：文件为JSON数组，数据库中每个文档是一条车流
// 3. 路网：文件为{intersections, roads}，数据库中每个文档为{class, data}
func Load(ctx context.Context, in config.Input) (*Input, error) {
	var client *mongo.Client
	if in.Flow.File == "" || in.Roadnet.File == "" {
		var err error
		if client, err = newClient(ctx, in.URI); err != nil {
			return nil, err
		}
		defer disconnect(client)
	}

	res := &Input{}
	var err error
	if in.Flow.File != "" {
		err = loadJSON(in.Flow.File, &res.Flows)
	} else {
		res.Flows, err = loadFlows(ctx, client, in.Flow)
	}
	if err != nil {
		return nil, err
	}

	if in.Roadnet.File != "" {
		res.Roadnet = &entity.Roadnet{}
		err = loadJSON(in.Roadnet.File, res.Roadnet)
	} else {
		res.Roadnet, err = loadRoadnet(ctx, client, in.Roadnet)
	}
	if err != nil {
		return nil, err
	}
	log.Infof("loaded %d flow records, %d intersections, %d roads from %s and %s",
		len(res.Flows), len(res.Roadnet.Intersections), len(res.Roadnet.Roads), in.Flow, in.Roadnet)
	return res, nil
}

// LoadRoadnet 只加载路网
func LoadRoadnet(ctx context.Context, in config.Input) (*entity.Roadnet, error) {
	if in.Roadnet.File != "" {
		rn := &entity.Roadnet{}
		if err := loadJSON(in.Roadnet.File, rn); err != nil {
			return nil, err
		}
		return rn, nil
	}
	client, err := newClient(ctx, in.URI)
	if err != nil {
		return nil, err
	}
	defer disconnect(client)
	return loadRoadnet(ctx, client, in.Roadnet)
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrConfiguration, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: malformed %s: %v", entity.ErrConfiguration, path, err)
	}
	return nil
}

// WriteFlows 将车流以JSON数组写入文件，格式与Load读取的一致
func WriteFlows(path string, flows []entity.Flow) error {
	data, err := json.MarshalIndent(flows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
