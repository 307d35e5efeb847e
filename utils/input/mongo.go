package input

import (
	"context"
	"fmt"

	"github.com/tsinghua-fib-lab/greensplit/entity"
	"github.com/tsinghua-fib-lab/greensplit/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 路网文档的class取值
const (
	classIntersection = "intersection"
	classRoad         = "road"
)

// document 路网集合中的文档，data按class解析
type document struct {
	Class string   `bson:"class"`
	Data  bson.Raw `bson:"data"`
}

func newClient(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: mongodb input requires a uri", entity.ErrConfiguration)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect mongodb: %v", entity.ErrConfiguration, err)
	}
	return client, nil
}

func disconnect(client *mongo.Client) {
	if err := client.Disconnect(context.Background()); err != nil {
		log.Warnf("failed to disconnect mongodb: %v", err)
	}
}

func getColl(client *mongo.Client, path config.InputPath) *mongo.Collection {
	return client.Database(path.GetDb()).Collection(path.GetColl())
}

// loadFlows 读取集合中的全部车流
func loadFlows(ctx context.Context, client *mongo.Client, path config.InputPath) ([]entity.Flow, error) {
	log.Infof("start fetching flows from %s", path)
	cursor, err := getColl(client, path).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: find %s: %v", entity.ErrConfiguration, path, err)
	}
	var flows []entity.Flow
	if err := cursor.All(ctx, &flows); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", entity.ErrConfiguration, path, err)
	}
	log.Infof("finish fetching %d flows from %s", len(flows), path)
	return flows, nil
}

// loadRoadnet 读取路网集合
// 说明：未知class的文档被忽略并记录警告
func loadRoadnet(ctx context.Context, client *mongo.Client, path config.InputPath) (*entity.Roadnet, error) {
	log.Infof("start fetching roadnet from %s", path)
	cursor, err := getColl(client, path).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: find %s: %v", entity.ErrConfiguration, path, err)
	}
	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", entity.ErrConfiguration, path, err)
	}
	return decodeRoadnet(docs)
}

func decodeRoadnet(docs []document) (*entity.Roadnet, error) {
	rn := &entity.Roadnet{}
	for i, d := range docs {
		switch d.Class {
		case classIntersection:
			var v entity.Intersection
			if err := bson.Unmarshal(d.Data, &v); err != nil {
				return nil, fmt.Errorf("%w: document %d: %v", entity.ErrConfiguration, i, err)
			}
			rn.Intersections = append(rn.Intersections, v)
		case classRoad:
			var v entity.Road
			if err := bson.Unmarshal(d.Data, &v); err != nil {
				return nil, fmt.Errorf("%w: document %d: %v", entity.ErrConfiguration, i, err)
			}
			rn.Roads = append(rn.Roads, v)
		default:
			log.Warnf("ignore roadnet document %d with unknown class %q", i, d.Class)
		}
	}
	return rn, nil
}
